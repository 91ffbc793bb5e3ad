package blockmd

import "testing"

const sampleDoc = `# My Project

## Ideas-Notes

* A storm cuts the town off

## Characters

* Anna (detective)
* Boris (smuggler)

## Setting

The docks at night.
`

func TestExtractSection(t *testing.T) {
	tests := []struct {
		name        string
		section     string
		wantContent string
		wantFound   bool
	}{
		{name: "exact name", section: "Characters", wantContent: "* Anna (detective)\n* Boris (smuggler)", wantFound: true},
		{name: "case insensitive", section: "characters", wantContent: "* Anna (detective)\n* Boris (smuggler)", wantFound: true},
		{name: "last section to end", section: "Setting", wantContent: "The docks at night.", wantFound: true},
		{name: "hyphenated name", section: "Ideas-Notes", wantContent: "* A storm cuts the town off", wantFound: true},
		{name: "missing section", section: "Antagonists", wantContent: "", wantFound: false},
		{name: "partial name does not match", section: "Character", wantContent: "", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, found := ExtractSection(sampleDoc, tt.section)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if content != tt.wantContent {
				t.Errorf("content = %q, want %q", content, tt.wantContent)
			}
		})
	}
}

func TestApplyProposalAppends(t *testing.T) {
	updated, changed := ApplyProposal(sampleDoc, "Characters", "* Vera (journalist)")
	if !changed {
		t.Fatal("new item must be applied")
	}

	content, found := ExtractSection(updated, "Characters")
	if !found {
		t.Fatal("section lost after proposal")
	}
	if content != "* Anna (detective)\n* Boris (smuggler)\n\n* Vera (journalist)" {
		t.Errorf("content = %q", content)
	}

	// Остальные секции не тронуты
	if setting, _ := ExtractSection(updated, "Setting"); setting != "The docks at night." {
		t.Errorf("setting section changed: %q", setting)
	}
}

func TestApplyProposalDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		patch string
	}{
		{name: "exact item", patch: "* Anna (detective)"},
		{name: "case difference", patch: "* anna (Detective)"},
		{name: "same name different role", patch: "* Anna (journalist)"},
		{name: "name with dash separator", patch: "* Anna — journalist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, changed := ApplyProposal(sampleDoc, "Characters", tt.patch)
			if changed {
				t.Fatalf("duplicate %q must be rejected", tt.patch)
			}
			if updated != sampleDoc {
				t.Error("rejected proposal must not modify the document")
			}
		})
	}
}

func TestApplyProposalWordOverlap(t *testing.T) {
	doc := "# My Project\n\n## Ideas-Notes\n\n* The storm cuts the town off from the mainland for three days\n"

	_, changed := ApplyProposal(doc, "Ideas-Notes", "* The storm cuts the town off from the mainland for two days")
	if changed {
		t.Fatal("near-identical idea must be rejected")
	}

	_, changed = ApplyProposal(doc, "Ideas-Notes", "* Boris hides the contraband inside the lighthouse")
	if !changed {
		t.Fatal("unrelated idea must be applied")
	}
}

func TestApplyProposalCreatesSection(t *testing.T) {
	updated, changed := ApplyProposal(sampleDoc, "Themes", "* Trust and betrayal")
	if !changed {
		t.Fatal("missing section must be created")
	}

	content, found := ExtractSection(updated, "Themes")
	if !found {
		t.Fatal("created section not found")
	}
	if content != "* Trust and betrayal" {
		t.Errorf("content = %q", content)
	}
}

func TestApplyProposalPlainText(t *testing.T) {
	// Построчное совпадение отклоняет не-списочный текст
	_, changed := ApplyProposal(sampleDoc, "Setting", "The docks at night.")
	if changed {
		t.Fatal("existing line must be rejected")
	}

	updated, changed := ApplyProposal(sampleDoc, "Setting", "Rain hammers the tin roofs.")
	if !changed {
		t.Fatal("new line must be applied")
	}
	content, _ := ExtractSection(updated, "Setting")
	if content != "The docks at night.\n\nRain hammers the tin roofs." {
		t.Errorf("content = %q", content)
	}
}
