package stubs

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giygas/clerkship-tools/config"
	"github.com/giygas/clerkship-tools/entities"
	"github.com/giygas/clerkship-tools/jsontree"
)

func mustParse(t *testing.T, data string) *jsontree.Node {
	t.Helper()
	n, err := jsontree.Parse([]byte(data))
	require.NoError(t, err)
	return n
}

func TestBuildHeadache(t *testing.T) {
	index := mustParse(t, `{"Headache": {"Migraine": {}, "Tension-type": {"freq": "common"}}}`)
	dest := entities.Destination{Presentation: entities.Presentation{Name: "Headache"}}

	doc := Build(dest, []string{"Headache"}, index, []string{"onset"}, Options{IncludeFrequency: true})

	want := entities.Document{
		Presentation: "Headache",
		Items: []entities.Item{
			{Name: "Migraine", Symptoms: []string{"onset"}},
			{Name: "Tension-type", Symptoms: []string{"onset"}, Freq: "common"},
		},
		Sources: []string{"Headache"},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDropsCaseInsensitiveDuplicates(t *testing.T) {
	index := mustParse(t, `{
		"Abdominal pain (acute)": {"Gastrointestinal": ["Appendicitis", "Cholecystitis"]},
		"Abdominal pain (chronic)": {"gastrointestinal": ["APPENDICITIS", "IBS"], "Vascular": ["Appendicitis"]}
	}`)
	dest := entities.Destination{Presentation: entities.Presentation{Name: "Abdominal Pain"}}

	doc := Build(dest, []string{"Abdominal pain (acute)", "Abdominal pain (chronic)"}, index, nil, Options{})

	var got [][2]string
	for _, it := range doc.Items {
		got = append(got, [2]string{it.System, it.Name})
	}
	assert.Equal(t, [][2]string{
		{"Gastrointestinal", "Appendicitis"},
		{"Gastrointestinal", "Cholecystitis"},
		{"gastrointestinal", "IBS"},
		{"Vascular", "Appendicitis"},
	}, got)
	assert.Equal(t, []string{"Abdominal pain (acute)", "Abdominal pain (chronic)"}, doc.Sources)
}

func TestBuildFrequencyAndFlags(t *testing.T) {
	index := mustParse(t, `{"Chest pain": {"Cardiac": {"MI": {"freq": "common", "redFlag": true}}}}`)
	dest := entities.Destination{Presentation: entities.Presentation{Name: "Chest pain"}, LowPriority: true}

	doc := Build(dest, []string{"Chest pain"}, index, nil, Options{IncludeFrequency: false, FlagLowPriority: true})
	require.Len(t, doc.Items, 1)
	assert.Empty(t, doc.Items[0].Freq)
	assert.True(t, doc.Items[0].RedFlag)
	assert.True(t, doc.LowPriority)

	doc = Build(dest, []string{"Chest pain"}, index, nil, Options{IncludeFrequency: true})
	assert.Equal(t, "common", doc.Items[0].Freq)
	assert.False(t, doc.LowPriority)
}

func TestBuildWithoutMatch(t *testing.T) {
	doc := Build(entities.Destination{Presentation: entities.Presentation{Name: "Hiccups"}}, nil, jsontree.NewObject(), nil, Options{})

	assert.NotNil(t, doc.Items)
	assert.Empty(t, doc.Items)
	assert.Empty(t, doc.Sources)

	data, err := jsontree.Encode(doc.Node())
	require.NoError(t, err)
	assert.JSONEq(t, `{"presentation": "Hiccups", "items": [], "sources": []}`, string(data))
}

func TestDocumentNodeOrder(t *testing.T) {
	doc := entities.Document{
		Presentation: "Cough",
		Items: []entities.Item{
			{Name: "Asthma", System: "Respiratory", Symptoms: []string{"onset", "timing"}, Freq: "common"},
		},
		Sources:     []string{"Cough"},
		LowPriority: true,
	}

	data, err := jsontree.Encode(doc.Node())
	require.NoError(t, err)
	assert.Equal(t, `{
  "presentation": "Cough",
  "items": [
    {
      "name": "Asthma",
      "system": "Respiratory",
      "redFlag": false,
      "symptoms": {
        "onset": [],
        "timing": []
      },
      "freq": "common"
    }
  ],
  "sources": [
    "Cough"
  ],
  "lowPriority": true
}
`, string(data))
}

func TestPlannerDestination(t *testing.T) {
	profile := config.DefaultProfile()
	profile.LowPriority = []string{"Hiccups"}
	base := filepath.Join("out", "presentations")

	testCases := []struct {
		name     string
		mode     config.LowPriorityMode
		entry    entities.Presentation
		wantPath string
		wantLow  bool
	}{
		{
			name:     "section folder",
			mode:     config.LowPrioritySubfolder,
			entry:    entities.Presentation{Name: "Chest Pain", Section: "Clinical Presentations"},
			wantPath: filepath.Join(base, "clinical", "chest-pain.json"),
		},
		{
			name:     "unmapped section",
			mode:     config.LowPrioritySubfolder,
			entry:    entities.Presentation{Name: "Rash", Section: "Skin"},
			wantPath: filepath.Join(base, "misc", "rash.json"),
		},
		{
			name:     "low priority from profile in subfolder mode",
			mode:     config.LowPrioritySubfolder,
			entry:    entities.Presentation{Name: "Hiccups", Section: "Clinical Presentations"},
			wantPath: filepath.Join(base, "clinical", "other", "hiccups.json"),
			wantLow:  true,
		},
		{
			name:     "low priority from entry in flag mode",
			mode:     config.LowPriorityFlag,
			entry:    entities.Presentation{Name: "Tremor", Section: "Clinical Presentations", LowPriority: true},
			wantPath: filepath.Join(base, "clinical", "tremor.json"),
			wantLow:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewPlanner(base, profile, tc.mode).Destination(tc.entry)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPath, d.Path)
			assert.Equal(t, tc.wantLow, d.LowPriority)
			assert.Equal(t, tc.entry, d.Presentation)
		})
	}
}

func TestPlannerRejectsEmptySlug(t *testing.T) {
	_, err := NewPlanner("out", nil, config.LowPrioritySubfolder).Destination(entities.Presentation{Name: "???", Section: "Clinical Presentations"})
	assert.ErrorContains(t, err, "empty slug")
}

func TestPlanSkipsIdenticalEntries(t *testing.T) {
	list := entities.PresentationList{Sections: []entities.Section{
		{Name: "Clinical Presentations", Presentations: []entities.Presentation{
			{Name: "Cough", Section: "Clinical Presentations"},
			{Name: "Cough", Section: "Clinical Presentations"},
			{Name: "cough!", Section: "Clinical Presentations"},
		}},
	}}

	dests, err := NewPlanner("out", nil, config.LowPrioritySubfolder).Plan(list)
	require.NoError(t, err)
	require.Len(t, dests, 2)
	assert.Equal(t, "Cough", dests[0].Presentation.Name)
	assert.Equal(t, "cough!", dests[1].Presentation.Name)
	assert.Equal(t, dests[0].Path, dests[1].Path)
}
