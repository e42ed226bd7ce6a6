package survey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Canonical field names used by the default schema and the typed Record view.
const (
	FieldCGPA               = "cgpa"
	FieldGender             = "gender"
	FieldAttendancePct      = "attendance_pct"
	FieldStudyHours         = "study_hours_daily"
	FieldStudySessions      = "study_sessions_daily"
	FieldSocialMediaHours   = "social_media_hours_daily"
	FieldScholarship        = "scholarship_status"
	FieldFamilyIncome       = "family_income"
	FieldAdmissionYear      = "admission_year"
	FieldAttendanceBand     = "attendance_band"
	FieldSocialMediaBand    = "social_media_band"
	FieldIncomeBand         = "income_band"
	FieldPCStatus           = "pc_status"
	FieldConsultancy        = "consultancy_status"
	FieldEnglishProficiency = "english_proficiency"
	FieldSSCGPA             = "ssc_gpa"
	FieldHSCGPA             = "hsc_gpa"
	FieldProgram            = "program"
	FieldClassModality      = "class_modality"
)

// Interval selects which side of each band bucket is closed.
type Interval string

const (
	// RightClosed buckets are (lo, hi]; the lowest bucket also includes its lower edge.
	RightClosed Interval = "right-closed"
	// RightOpen buckets are [lo, hi).
	RightOpen Interval = "right-open"
)

// BandRule derives a categorical band field from a numeric source field.
type BandRule struct {
	Name       string    `mapstructure:"name" yaml:"name" json:"name"`
	Source     string    `mapstructure:"source" yaml:"source" json:"source"`
	Boundaries []float64 `mapstructure:"boundaries" yaml:"boundaries" json:"boundaries"`
	Labels     []string  `mapstructure:"labels" yaml:"labels" json:"labels"`
	Interval   Interval  `mapstructure:"interval" yaml:"interval,omitempty" json:"interval,omitempty"`
	// DynamicTop appends max(source)+1 as the top boundary at load time.
	DynamicTop bool `mapstructure:"dynamic_top" yaml:"dynamic_top,omitempty" json:"dynamic_top,omitempty"`
}

// MetricRule describes one headline metric: the mean of a numeric field, or the
// percentage of rows whose categorical value equals Match.
type MetricRule struct {
	Name  string `mapstructure:"name" yaml:"name" json:"name"`
	Field string `mapstructure:"field" yaml:"field" json:"field"`
	Kind  string `mapstructure:"kind" yaml:"kind" json:"kind"`
	Match string `mapstructure:"match" yaml:"match,omitempty" json:"match,omitempty"`
}

// Config is the survey schema the pipeline normalizes against.
type Config struct {
	ColumnAliases       map[string]string `mapstructure:"column_aliases" yaml:"column_aliases" json:"column_aliases"`
	NumericFields       []string          `mapstructure:"numeric_fields" yaml:"numeric_fields" json:"numeric_fields"`
	CategoricalFields   []string          `mapstructure:"categorical_fields" yaml:"categorical_fields" json:"categorical_fields"`
	BandRules           []BandRule        `mapstructure:"band_rules" yaml:"band_rules" json:"band_rules"`
	AdmissionYearField  string            `mapstructure:"admission_year_field" yaml:"admission_year_field" json:"admission_year_field"`
	TargetAdmissionYear int               `mapstructure:"target_admission_year" yaml:"target_admission_year" json:"target_admission_year"`
	Encodings           []string          `mapstructure:"encodings" yaml:"encodings" json:"encodings"`
	Metrics             []MetricRule      `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// DefaultConfig returns the schema of the student performance survey export.
func DefaultConfig() Config {
	return Config{
		ColumnAliases: map[string]string{
			"What is your current CGPA?":                        FieldCGPA,
			"Gender":                                            FieldGender,
			"How many hour do you study daily?":                 FieldStudyHours,
			"How many times do you seat for study in a day?":    FieldStudySessions,
			"Average attendance on class":                       FieldAttendancePct,
			"How many hour do you spent daily in social media?": FieldSocialMediaHours,
			"Do you have meritorious scholarship ?":             FieldScholarship,
			"What is your monthly family income?":               FieldFamilyIncome,
			"Do you have personal Computer?":                    FieldPCStatus,
			"Do you attend in teacher consultancy for any kind of academical problems?": FieldConsultancy,
			"Status of your English language proficiency":                               FieldEnglishProficiency,
			"S.S.C (GPA)":        FieldSSCGPA,
			"H.S.C (GPA)":        FieldHSCGPA,
			"Arts Program":       FieldProgram,
			"Classes are mostly": FieldClassModality,
			"Admission year":     FieldAdmissionYear,
		},
		NumericFields: []string{
			FieldCGPA, FieldStudyHours, FieldStudySessions, FieldAttendancePct,
			FieldSocialMediaHours, FieldFamilyIncome, FieldSSCGPA, FieldHSCGPA,
		},
		CategoricalFields: []string{
			FieldGender, FieldScholarship, FieldPCStatus, FieldConsultancy,
			FieldEnglishProficiency, FieldProgram, FieldClassModality,
		},
		BandRules: []BandRule{
			{
				Name:       FieldAttendanceBand,
				Source:     FieldAttendancePct,
				Boundaries: []float64{0, 70, 85, 100},
				Labels:     []string{"Low (<=70%)", "Medium (71-85%)", "High (>85%)"},
				Interval:   RightClosed,
			},
			{
				Name:       FieldSocialMediaBand,
				Source:     FieldSocialMediaHours,
				Boundaries: []float64{-1, 0, 2, 5},
				Labels:     []string{"0 hours", "1-2 hours", "3-5 hours", ">5 hours"},
				Interval:   RightClosed,
				DynamicTop: true,
			},
			{
				Name:       FieldIncomeBand,
				Source:     FieldFamilyIncome,
				Boundaries: []float64{0, 50000, 150000},
				Labels:     []string{"Low Income", "Medium Income", "High Income"},
				Interval:   RightClosed,
				DynamicTop: true,
			},
		},
		AdmissionYearField: FieldAdmissionYear,
		Encodings:          []string{"utf-8", "latin-1", "cp1252"},
		Metrics: []MetricRule{
			{Name: "Cognitive skill (mean CGPA)", Field: FieldCGPA, Kind: "mean"},
			{Name: "Digital skill (owns a PC)", Field: FieldPCStatus, Kind: "share", Match: "Yes"},
			{Name: "Seeks consultancy", Field: FieldConsultancy, Kind: "share", Match: "Yes"},
			{Name: "Meritorious scholarship", Field: FieldScholarship, Kind: "share", Match: "Yes"},
		},
	}
}

// WithDefaults fills every empty section of c from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if len(c.ColumnAliases) == 0 {
		c.ColumnAliases = d.ColumnAliases
	}
	if len(c.NumericFields) == 0 {
		c.NumericFields = d.NumericFields
	}
	if len(c.CategoricalFields) == 0 {
		c.CategoricalFields = d.CategoricalFields
	}
	if len(c.BandRules) == 0 {
		c.BandRules = d.BandRules
	}
	if c.AdmissionYearField == "" {
		c.AdmissionYearField = d.AdmissionYearField
	}
	if len(c.Encodings) == 0 {
		c.Encodings = d.Encodings
	}
	if len(c.Metrics) == 0 {
		c.Metrics = d.Metrics
	}
	return c
}

// Validate checks band rules, encodings and field sets.
func (c Config) Validate() error {
	numeric := map[string]bool{}
	for _, f := range c.NumericFields {
		numeric[f] = true
	}
	for _, f := range c.CategoricalFields {
		if numeric[f] {
			return &ConfigError{Key: "categorical_fields", Err: fmt.Errorf("%q is also a numeric field", f)}
		}
	}
	if c.AdmissionYearField != "" && numeric[c.AdmissionYearField] {
		return &ConfigError{Key: "admission_year_field", Err: fmt.Errorf("%q must not be a numeric field", c.AdmissionYearField)}
	}
	folded := map[string]string{}
	for _, k := range sortedKeys(c.ColumnAliases) {
		fk := strings.ToLower(strings.TrimSpace(k))
		if prev, ok := folded[fk]; ok && c.ColumnAliases[prev] != c.ColumnAliases[k] {
			return &ConfigError{Key: "column_aliases", Err: fmt.Errorf("%q and %q differ only in case but map to %q and %q", prev, k, c.ColumnAliases[prev], c.ColumnAliases[k])}
		}
		folded[fk] = k
	}
	for _, name := range c.Encodings {
		if _, ok := lookupDecoder(name); !ok {
			return &ConfigError{Key: "encodings", Err: fmt.Errorf("unsupported encoding %q", name)}
		}
	}
	seen := map[string]bool{}
	for i, r := range c.BandRules {
		key := fmt.Sprintf("band_rules[%d]", i)
		if r.Name == "" || r.Source == "" {
			return &ConfigError{Key: key, Err: fmt.Errorf("name and source are required")}
		}
		if seen[r.Name] {
			return &ConfigError{Key: key, Err: fmt.Errorf("duplicate band %q", r.Name)}
		}
		seen[r.Name] = true
		if r.Name == r.Source {
			return &ConfigError{Key: key, Err: fmt.Errorf("band %q would replace its own source", r.Name)}
		}
		if !numeric[r.Source] {
			return &ConfigError{Key: key, Err: fmt.Errorf("source %q is not a numeric field", r.Source)}
		}
		switch r.Interval {
		case "", RightClosed, RightOpen:
		default:
			return &ConfigError{Key: key, Err: fmt.Errorf("unknown interval %q", r.Interval)}
		}
		for j := 1; j < len(r.Boundaries); j++ {
			if !(r.Boundaries[j] > r.Boundaries[j-1]) {
				return &ConfigError{Key: key, Err: fmt.Errorf("boundaries must be strictly ascending")}
			}
		}
		want := len(r.Boundaries) - 1
		if r.DynamicTop {
			want = len(r.Boundaries)
		}
		if len(r.Boundaries) == 0 || len(r.Labels) == 0 || len(r.Labels) != want {
			return &ConfigError{Key: key, Err: fmt.Errorf("%d boundaries need %d labels, got %d", len(r.Boundaries), want, len(r.Labels))}
		}
	}
	for i, m := range c.Metrics {
		switch m.Kind {
		case "mean", "share":
		default:
			return &ConfigError{Key: fmt.Sprintf("metrics[%d]", i), Err: fmt.Errorf("unknown kind %q (use mean|share)", m.Kind)}
		}
	}
	return nil
}

// Fingerprint identifies the configuration for cache keys.
func (c Config) Fingerprint() string {
	cp := c
	cp.NumericFields = sortedCopy(c.NumericFields)
	cp.CategoricalFields = sortedCopy(c.CategoricalFields)
	// json.Marshal sorts map keys, so the encoding is stable
	b, err := json.Marshal(cp)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldSet(fields []string) map[string]bool {
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[strings.TrimSpace(f)] = true
	}
	return m
}
