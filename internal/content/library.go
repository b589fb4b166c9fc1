package content

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"carewise/internal/models"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Library holds every static content table the pages render.
type Library struct {
	Responder *Responder

	Categories          []models.Category
	Questions           []models.Question
	EncouragingMessages []string

	Lessons []models.Lesson

	Resources []models.HealthResource
	Remedies  []models.Remedy

	Moods           []models.MoodOption
	FirstAid        []models.FirstAidGuide
	CommonQuestions []models.CommonQuestion
}

type questFile struct {
	Categories          []models.Category `yaml:"categories"`
	Questions           []models.Question `yaml:"questions"`
	EncouragingMessages []string          `yaml:"encouraging_messages"`
}

type lessonsFile struct {
	Lessons []models.Lesson `yaml:"lessons"`
}

type locationFile struct {
	Resources []models.HealthResource `yaml:"resources"`
	Remedies  []models.Remedy         `yaml:"remedies"`
}

type wellbeingFile struct {
	Moods           []models.MoodOption     `yaml:"moods"`
	FirstAid        []models.FirstAidGuide  `yaml:"first_aid"`
	CommonQuestions []models.CommonQuestion `yaml:"common_medicine_questions"`
}

// Load reads the embedded content tables.
func Load() (*Library, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS reads the content tables from fsys, which must contain
// responses.yaml, quest.yaml, lessons.yaml, location.yaml and wellbeing.yaml.
func LoadFS(fsys fs.FS) (*Library, error) {
	raw, err := fs.ReadFile(fsys, "responses.yaml")
	if err != nil {
		return nil, err
	}
	responder, err := NewResponder(raw)
	if err != nil {
		return nil, err
	}

	var quest questFile
	var lessons lessonsFile
	var location locationFile
	var wellbeing wellbeingFile

	files := []struct {
		name string
		out  any
	}{
		{"quest.yaml", &quest},
		{"lessons.yaml", &lessons},
		{"location.yaml", &location},
		{"wellbeing.yaml", &wellbeing},
	}
	for _, f := range files {
		if err := decodeFile(fsys, f.name, f.out); err != nil {
			return nil, err
		}
	}

	lib := &Library{
		Responder:           responder,
		Categories:          quest.Categories,
		Questions:           quest.Questions,
		EncouragingMessages: quest.EncouragingMessages,
		Lessons:             lessons.Lessons,
		Resources:           location.Resources,
		Remedies:            location.Remedies,
		Moods:               wellbeing.Moods,
		FirstAid:            wellbeing.FirstAid,
		CommonQuestions:     wellbeing.CommonQuestions,
	}
	if err := lib.validate(); err != nil {
		return nil, err
	}
	return lib, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (l *Library) validate() error {
	known := make(map[string]bool, len(l.Categories))
	for _, c := range l.Categories {
		known[c.ID] = true
	}
	for _, q := range l.Questions {
		if !known[q.Category] {
			return fmt.Errorf("question %s: unknown category %q", q.ID, q.Category)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("question %s: want 4 options, got %d", q.ID, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %s: correct index %d out of range", q.ID, q.CorrectIndex)
		}
	}
	for _, lesson := range l.Lessons {
		if len(lesson.Benefits) < 3 {
			return fmt.Errorf("lesson %s: needs at least 3 benefits", lesson.ID)
		}
	}
	return nil
}

// Lesson looks up an awareness lesson by id.
func (l *Library) Lesson(id string) (models.Lesson, bool) {
	for _, lesson := range l.Lessons {
		if lesson.ID == id {
			return lesson, true
		}
	}
	return models.Lesson{}, false
}

// Mood looks up a mood option by id.
func (l *Library) Mood(id string) (models.MoodOption, bool) {
	for _, m := range l.Moods {
		if m.ID == id {
			return m, true
		}
	}
	return models.MoodOption{}, false
}

// ResourcesFor returns the resources available everywhere plus those
// tagged with region.
func (l *Library) ResourcesFor(region string) []models.HealthResource {
	var out []models.HealthResource
	for _, r := range l.Resources {
		if inRegion(r.Region, region) {
			out = append(out, r)
		}
	}
	return out
}

// RemediesFor returns the remedies available everywhere plus those tagged
// with region.
func (l *Library) RemediesFor(region string) []models.Remedy {
	var out []models.Remedy
	for _, r := range l.Remedies {
		if inRegion(r.Region, region) {
			out = append(out, r)
		}
	}
	return out
}

func inRegion(itemRegion, region string) bool {
	return itemRegion == "general" || strings.EqualFold(itemRegion, strings.TrimSpace(region))
}
