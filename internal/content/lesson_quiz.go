package content

import (
	"fmt"
	"strings"

	"carewise/internal/models"
)

const optionPreviewLen = 50

// LessonScript is the narration read aloud when a lesson starts.
func LessonScript(lesson models.Lesson) string {
	return fmt.Sprintf("Welcome to today's health lesson about %s. %s %s offers many benefits including %s. To prepare this remedy, %s Remember to %s",
		lesson.Title, lesson.Content, lesson.Remedy, strings.Join(lesson.Benefits, ", "), lesson.Preparation, lesson.Cautions)
}

// LessonQuiz generates the three question quiz that follows a lesson:
// main benefit, preparation and precaution.
func LessonQuiz(lesson models.Lesson) []models.Question {
	benefits := append(append([]string{}, lesson.Benefits[:3]...), "None of the above")

	return []models.Question{
		{
			ID:           lesson.ID + "-q1",
			Prompt:       fmt.Sprintf("What is the main benefit of %s?", lesson.Remedy),
			Options:      benefits,
			CorrectIndex: 0,
			Explanation:  fmt.Sprintf("%s is particularly known for %s, among other benefits.", lesson.Remedy, strings.ToLower(lesson.Benefits[0])),
		},
		{
			ID:     lesson.ID + "-q2",
			Prompt: fmt.Sprintf("How should you prepare %s?", lesson.Remedy),
			Options: []string{
				preview(lesson.Preparation),
				"Boil for 30 minutes",
				"Mix with cold water only",
				"Use only at night",
			},
			CorrectIndex: 0,
			Explanation:  lesson.Preparation,
		},
		{
			ID:     lesson.ID + "-q3",
			Prompt: fmt.Sprintf("What precaution should you take with %s?", lesson.Remedy),
			Options: []string{
				"No precautions needed",
				preview(lesson.Cautions),
				"Only use once per year",
				"Mix with alcohol",
			},
			CorrectIndex: 1,
			Explanation:  lesson.Cautions,
		},
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > optionPreviewLen {
		r = r[:optionPreviewLen]
	}
	return string(r) + "..."
}
