package domain

import "time"

// Item is the shared identity surface of the two polymorphic catalog
// variants. Components that only need id/level/meanings (the generator,
// the statistics package) can work against this interface; components that
// need surface/reading specifics pattern-match on the concrete type.
type Item interface {
	ItemID() int
	Kind() ItemKind
	Level() JLPTLevel
	MeaningsIn(lang Language) []string
	DisplaySurface() string // the Japanese text shown to the user
}

// VocabItem is a vocabulary entry: a surface form (possibly containing Han
// characters), its kana reading, and optional Sino-Vietnamese gloss.
type VocabItem struct {
	ID        int
	JLPT      JLPTLevel
	Surface   string // 言葉
	Reading   string // ことば (kana only)
	SinoViet  string // optional, e.g. "ngôn ngữ"
	PartOfSp  string // part-of-speech tag
	Tags      []string
	Meanings  map[Language][]string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (v *VocabItem) ItemID() int      { return v.ID }
func (v *VocabItem) Kind() ItemKind   { return KindVocab }
func (v *VocabItem) Level() JLPTLevel { return v.JLPT }
func (v *VocabItem) MeaningsIn(lang Language) []string {
	return v.Meanings[lang]
}
func (v *VocabItem) DisplaySurface() string { return v.Surface }

// KanjiItem is a single-character kanji entry with on/kun readings.
type KanjiItem struct {
	ID          int
	JLPT        JLPTLevel
	Surface     string // the single character, unique
	OnReadings  []string
	KunReadings []string
	SinoViet    string
	StrokeCount *int
	Radical     *string
	Meanings    map[Language][]string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (k *KanjiItem) ItemID() int      { return k.ID }
func (k *KanjiItem) Kind() ItemKind   { return KindKanji }
func (k *KanjiItem) Level() JLPTLevel { return k.JLPT }
func (k *KanjiItem) MeaningsIn(lang Language) []string {
	return k.Meanings[lang]
}
func (k *KanjiItem) DisplaySurface() string { return k.Surface }

var (
	_ Item = (*VocabItem)(nil)
	_ Item = (*KanjiItem)(nil)
)
