package onboarding

// QuestionType determines how an answer is captured and validated.
type QuestionType string

const (
	TypeText   QuestionType = "text"
	TypeNumber QuestionType = "number"
	TypeChoice QuestionType = "choice"
	TypeScale  QuestionType = "scale"
)

// Question is one step of the pre-chat questionnaire.
type Question struct {
	ID          string
	Prompt      string
	Type        QuestionType
	Placeholder string
	Options     []string // TypeChoice
	Min, Max    int      // TypeNumber, TypeScale
}

// Questions returns the fixed questionnaire collecting the profile context
// the bot needs before chat begins.
func Questions() []Question {
	return []Question{
		{
			ID:          "parent_name",
			Prompt:      "נעים מאוד, אני יונתן. איך קוראים לך?",
			Type:        TypeText,
			Placeholder: "השם שלך",
		},
		{
			ID:      "parent_gender",
			Prompt:  "באיזה מגדר לפנות אליך?",
			Type:    TypeChoice,
			Options: []string{"זכר", "נקבה", "אחר"},
		},
		{
			ID:          "child_name",
			Prompt:      "ומה שם המתבגר/ת שעליו/ה נרצה לדבר?",
			Type:        TypeText,
			Placeholder: "שם הילד/ה",
		},
		{
			ID:          "child_age",
			Prompt:      "בן/בת כמה הוא/היא?",
			Type:        TypeNumber,
			Placeholder: "לדוגמה: 15",
			Min:         1,
			Max:         25,
		},
		{
			ID:      "child_gender",
			Prompt:  "ומה המגדר שלו/ה?",
			Type:    TypeChoice,
			Options: []string{"זכר", "נקבה", "אחר"},
		},
		{
			ID:     "main_challenge",
			Prompt: "מהו האתגר המרכזי שבו את/ה רוצה להתמקד היום?",
			Type:   TypeChoice,
			Options: []string{
				"תקשורת וריבים",
				"קשיים בלימודים",
				"ויסות רגשי והתפרצויות",
				"זמן מסך והתמכרויות",
				"קשיים חברתיים",
				"התנהגות סיכונית",
				"אחר",
			},
		},
		{
			ID:          "challenge_context",
			Prompt:      "מתי הבעיה הזו מופיעה בדרך כלל?",
			Type:        TypeText,
			Placeholder: "למשל, בערבים, סביב הכנת שיעורים...",
		},
		{
			ID:          "past_solutions",
			Prompt:      "איך ניסית להתמודד עם זה עד עכשיו?",
			Type:        TypeText,
			Placeholder: "למשל, ניסיתי לדבר, לקחת את הטלפון...",
		},
		{
			ID:     "distress_level",
			Prompt: "בסקאלה של 1 עד 10, כמה המצב הזה גורם לך למצוקה?",
			Type:   TypeScale,
			Min:    1,
			Max:    10,
		},
		{
			ID:     "goal",
			Prompt: "ומה המטרה העיקרית שלך מהשיחה שלנו?",
			Type:   TypeChoice,
			Options: []string{
				"לקבל כלים פרקטיים",
				"להבין טוב יותר את הילד/ה",
				"להרגיש יותר ביטחון בהורות",
				"לפרוק ולשתף",
			},
		},
	}
}
