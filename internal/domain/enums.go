package domain

import "strings"

// JLPTLevel is a Japanese-Language Proficiency Test difficulty tag.
// n5 is easiest, n1 hardest; "none" tags items the catalog has not leveled.
type JLPTLevel string

const (
	N5   JLPTLevel = "n5"
	N4   JLPTLevel = "n4"
	N3   JLPTLevel = "n3"
	N2   JLPTLevel = "n2"
	N1   JLPTLevel = "n1"
	None JLPTLevel = "none"
)

// ParseJLPTLevel validates a level string against the closed set.
func ParseJLPTLevel(s string) (JLPTLevel, error) {
	lvl := JLPTLevel(strings.ToLower(strings.TrimSpace(s)))
	switch lvl {
	case N5, N4, N3, N2, N1, None:
		return lvl, nil
	default:
		return "", &InvalidJLPTLevelError{Input: s}
	}
}

// String returns the level tag as stored (e.g. "n5").
func (l JLPTLevel) String() string { return string(l) }

// InvalidJLPTLevelError indicates a JLPT tag outside {n5,n4,n3,n2,n1,none}.
type InvalidJLPTLevelError struct {
	Input string
}

func (e *InvalidJLPTLevelError) Error() string {
	return "invalid jlpt level: " + e.Input + " (valid: n5,n4,n3,n2,n1,none)"
}

// ItemKind distinguishes the two polymorphic item variants.
type ItemKind string

const (
	KindVocab ItemKind = "vocab"
	KindKanji ItemKind = "kanji"
)

func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindVocab:
		return KindVocab, nil
	case KindKanji:
		return KindKanji, nil
	default:
		return "", &InvalidItemKindError{Input: s}
	}
}

type InvalidItemKindError struct {
	Input string
}

func (e *InvalidItemKindError) Error() string {
	return "invalid item kind: " + e.Input + " (valid: vocab,kanji)"
}

// Mode selects which scheduler/history tables own a review.
type Mode string

const (
	ModeFlash Mode = "flash"
	ModeMCQ   Mode = "mcq"
)

// Language is a meaning-language code.
type Language string

const (
	LangVI Language = "vi"
	LangEN Language = "en"
)

func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LangVI:
		return LangVI, nil
	case LangEN:
		return LangEN, nil
	default:
		return "", &InvalidLanguageError{Input: s}
	}
}

type InvalidLanguageError struct {
	Input string
}

func (e *InvalidLanguageError) Error() string {
	return "invalid language: " + e.Input + " (valid: vi,en)"
}

// QuestionType selects the MCQ prompt/answer shape.
type QuestionType string

const (
	WordToMeaning QuestionType = "w2m"
	MeaningToWord QuestionType = "m2w"
	Mixed         QuestionType = "mixed"
)

func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(strings.ToLower(strings.TrimSpace(s))) {
	case WordToMeaning, MeaningToWord, Mixed:
		return QuestionType(strings.ToLower(strings.TrimSpace(s))), nil
	default:
		return "", &InvalidQuestionTypeError{Input: s}
	}
}

type InvalidQuestionTypeError struct {
	Input string
}

func (e *InvalidQuestionTypeError) Error() string {
	return "invalid question type: " + e.Input + " (valid: w2m,m2w,mixed)"
}
