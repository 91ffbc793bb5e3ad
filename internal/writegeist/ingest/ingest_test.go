package ingest

import (
	"reflect"
	"testing"
)

func TestHeuristicExtractThirdPerson(t *testing.T) {
	text := "It was cold when Anna reached the pier. Boris had seen Anna before, and Boris knew the fog. They met Anna at Lighthouse Point."

	meta := HeuristicExtract(text)

	if !reflect.DeepEqual(meta.Characters, []string{"Anna"}) {
		t.Errorf("characters = %v, want [Anna]", meta.Characters)
	}
	if !reflect.DeepEqual(meta.Locations, []string{"Lighthouse Point"}) {
		t.Errorf("locations = %v, want [Lighthouse Point]", meta.Locations)
	}
	if !reflect.DeepEqual(meta.POV, []string{"Anna"}) {
		t.Errorf("pov = %v, want [Anna]", meta.POV)
	}
}

func TestHeuristicExtractFirstPerson(t *testing.T) {
	text := "I walked to the docks and my hands shook. I saw Anna once. The rain kept falling on me."

	meta := HeuristicExtract(text)

	if !reflect.DeepEqual(meta.POV, []string{"first person"}) {
		t.Errorf("pov = %v, want [first person]", meta.POV)
	}
	if len(meta.Characters) != 0 {
		t.Errorf("characters = %v, want none", meta.Characters)
	}
}

func TestHeuristicExtractCompoundNames(t *testing.T) {
	text := "Nobody noticed when Anna Petrova arrived. Everyone watched as Anna Petrova spoke, though some called Anna by name."

	meta := HeuristicExtract(text)

	if !reflect.DeepEqual(meta.Characters, []string{"Anna Petrova"}) {
		t.Errorf("characters = %v, want [Anna Petrova]", meta.Characters)
	}
	if !reflect.DeepEqual(meta.POV, []string{"Anna Petrova"}) {
		t.Errorf("pov = %v, want [Anna Petrova]", meta.POV)
	}
}

func TestHeuristicExtractSentenceStarters(t *testing.T) {
	// Слова с заглавной в начале предложения именами не считаются
	text := "The fog came in. She waited. Then nothing happened. After that everyone left."

	meta := HeuristicExtract(text)

	if len(meta.Characters) != 0 {
		t.Errorf("characters = %v, want none", meta.Characters)
	}
	if len(meta.Locations) != 0 {
		t.Errorf("locations = %v, want none", meta.Locations)
	}
	if len(meta.POV) != 0 {
		t.Errorf("pov = %v, want none", meta.POV)
	}
}

func TestHeuristicExtractEmpty(t *testing.T) {
	meta := HeuristicExtract("")

	if len(meta.Characters) != 0 || len(meta.Locations) != 0 || len(meta.POV) != 0 {
		t.Errorf("expected empty metadata, got %+v", meta)
	}
}
