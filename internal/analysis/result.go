package analysis

// Analyzer names in registry order.
const (
	NameCognitive = "cognitive"
	NameEmotional = "emotional"
	NamePattern   = "pattern"
	NameSymbolic  = "symbolic"
)

// RegistryOrder is the fixed order in which analyzer results are merged.
var RegistryOrder = []string{NameCognitive, NameEmotional, NamePattern, NameSymbolic}

// StatusInsufficientData marks a pattern result computed from too little history.
const StatusInsufficientData = "insufficient_data"

// Result is the minimal contract shared by every analyzer output.
type Result interface {
	Insights() []string
	Confidence() float64
	// WithInsights returns a shallow copy carrying the given insights.
	WithInsights(insights []string) Result
}

// base carries the fields common to all results.
type base struct {
	InsightList []string `json:"insights"`
	Score       float64  `json:"confidence"`
}

func (b base) Insights() []string  { return b.InsightList }
func (b base) Confidence() float64 { return b.Score }

// CognitiveResult is produced by CognitiveAnalyzer.
type CognitiveResult struct {
	CognitiveFunctions []string `json:"cognitive_functions"`
	ProcessingType     string   `json:"processing_type"`
	base
}

func (r *CognitiveResult) WithInsights(insights []string) Result {
	c := *r
	c.InsightList = insights
	return &c
}

// EmotionalResult is produced by EmotionalAnalyzer.
type EmotionalResult struct {
	PrimaryEmotions []string          `json:"primary_emotions"`
	PrimaryEmotion  string            `json:"primary_emotion,omitempty"`
	EmotionScores   map[string]int    `json:"emotion_scores,omitempty"`
	Intensity       string            `json:"intensity,omitempty"`
	EmotionalTone   string            `json:"emotional_tone"`
	KoreanEmotions  map[string]string `json:"korean_emotions,omitempty"`
	base
}

func (r *EmotionalResult) WithInsights(insights []string) Result {
	c := *r
	c.InsightList = insights
	return &c
}

// SymbolInterpretation describes one symbol found in the text.
type SymbolInterpretation struct {
	Meanings []string `json:"meanings"`
	Context  string   `json:"context"`
}

// SymbolicResult is produced by SymbolicAnalyzer.
type SymbolicResult struct {
	SymbolsFound          []string                        `json:"symbols_found"`
	SymbolInterpretations map[string]SymbolInterpretation `json:"symbol_interpretations,omitempty"`
	KoreanSymbols         map[string][]string             `json:"korean_symbols,omitempty"`
	KoreanInterpretations map[string]string               `json:"korean_interpretations,omitempty"`
	base
}

func (r *SymbolicResult) WithInsights(insights []string) Result {
	c := *r
	c.InsightList = insights
	return &c
}

// RecurringElements lists current-text tokens that also appear in recent history.
type RecurringElements struct {
	Symbols   []string `json:"symbols"`
	Emotions  []string `json:"emotions"`
	Locations []string `json:"locations"`
	Themes    []string `json:"themes"`
}

// ThemeEvolution compares recorded symbols between the two history windows.
type ThemeEvolution struct {
	Emerging []string `json:"emerging"`
	Fading   []string `json:"fading"`
}

// LucidityChange compares average lucidity between the two history windows.
type LucidityChange struct {
	RecentAverage *float64 `json:"recent_average,omitempty"`
	OlderAverage  *float64 `json:"older_average,omitempty"`
	Direction     string   `json:"direction"`
}

// ChangePatterns holds trend data. Status is set alone when history is too short.
type ChangePatterns struct {
	Status         string          `json:"status,omitempty"`
	EmotionTrend   string          `json:"emotion_trend,omitempty"`
	ThemeEvolution *ThemeEvolution `json:"theme_evolution,omitempty"`
	LucidityChange *LucidityChange `json:"lucidity_change,omitempty"`
}

// CurrentFeatures are structural features of the analyzed text.
type CurrentFeatures struct {
	Length      int  `json:"length"`
	HasDialogue bool `json:"has_dialogue"`
	HasMovement bool `json:"has_movement"`
	HasPeople   bool `json:"has_people"`
	HasAnimals  bool `json:"has_animals"`
}

// PatternResult is produced by PatternAnalyzer. When Status is
// StatusInsufficientData only Message and the base fields are set.
type PatternResult struct {
	Status            string             `json:"status,omitempty"`
	Message           string             `json:"message,omitempty"`
	RecurringElements *RecurringElements `json:"recurring_elements,omitempty"`
	ChangePatterns    *ChangePatterns    `json:"change_patterns,omitempty"`
	CurrentFeatures   *CurrentFeatures   `json:"current_features,omitempty"`
	base
}

func (r *PatternResult) WithInsights(insights []string) Result {
	c := *r
	c.InsightList = insights
	return &c
}

// Sufficient reports whether the pattern result was computed from enough history.
func (r *PatternResult) Sufficient() bool {
	return r.Status != StatusInsufficientData
}
