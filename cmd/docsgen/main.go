// Генерация документации об ошибках API в формате Markdown.
// Анализирует файл с определениями ошибок и создает Markdown-документ с таблицей, содержащей коды ошибок, HTTP-коды, сообщения и переводы на русский язык.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"
)

func main() {
	errorsFile := flag.String("src", "internal/writegeist/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "api_errors.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, *errorsFile, nil, 0)
	if err != nil {
		panic(err)
	}

	rows := getRows(f)

	ff, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output file", "err", err)
		os.Exit(1)
	}
	defer ff.Close()

	if err := md.NewMarkdown(ff).
		H1("Перечень кодов ошибок").
		PlainText("Данный раздел посвящен описанию возможных ошибок от сервера.").
		CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Сообщение", "Сообщение на русском"},
			Rows:   rows,
		}, md.TableOptions{
			AutoWrapText: false,
		}).Build(); err != nil {
		slog.Error("Generate docs fail", "err", err)
	} else {
		slog.Info("Docs generated")
	}
}

// Парсит определения ошибок из AST файла и собирает строки Markdown-таблицы.
func getRows(f *ast.File) [][]string {
	var rows [][]string
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range decl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, id := range valueSpec.Names {
				definedError, ok := id.Obj.Decl.(*ast.ValueSpec).Values[0].(*ast.CompositeLit)
				if !ok {
					continue
				}

				row := make([]string, 4)
				for _, v := range definedError.Elts {
					param, ok := v.(*ast.KeyValueExpr)
					if !ok {
						continue
					}
					switch fmt.Sprint(param.Key) {
					case "Code":
						row[0] = md.Bold(param.Value.(*ast.BasicLit).Value)
					case "StatusCode":
						statusName := param.Value.(*ast.SelectorExpr).Sel.Name
						row[1] = fmt.Sprintf("%s %s", getStatusCode(statusName), md.Italic(statusName))
					case "Err":
						row[2] = md.Code(strings.Trim(param.Value.(*ast.BasicLit).Value, "\""))
					case "RuErr":
						row[3] = md.Code(strings.Trim(param.Value.(*ast.BasicLit).Value, "\""))
					}
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// getStatusCode преобразует имя константы пакета net/http в числовой HTTP код.
func getStatusCode(status string) string {
	codes := map[string]int{
		"StatusBadRequest":            http.StatusBadRequest,
		"StatusUnauthorized":          http.StatusUnauthorized,
		"StatusNotFound":              http.StatusNotFound,
		"StatusConflict":              http.StatusConflict,
		"StatusRequestEntityTooLarge": http.StatusRequestEntityTooLarge,
		"StatusTooManyRequests":       http.StatusTooManyRequests,
		"StatusInternalServerError":   http.StatusInternalServerError,
		"StatusBadGateway":            http.StatusBadGateway,
	}
	code, ok := codes[status]
	if !ok {
		return "?"
	}
	return strconv.Itoa(code)
}
