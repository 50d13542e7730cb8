package valueobject

import "github.com/shopspring/decimal"

// KaratGrade represents a gold purity grade
type KaratGrade string

const (
	Karat18 KaratGrade = "K18"
	Karat21 KaratGrade = "K21"
	Karat22 KaratGrade = "K22"
	Karat24 KaratGrade = "K24"
)

// String returns the string representation of KaratGrade
func (k KaratGrade) String() string {
	return string(k)
}

// IsValid returns true if the karat grade is valid
func (k KaratGrade) IsValid() bool {
	switch k {
	case Karat18, Karat21, Karat22, Karat24:
		return true
	}
	return false
}

// Purity returns the fine-gold fraction of the grade (parts per 24)
func (k KaratGrade) Purity() decimal.Decimal {
	var parts int64
	switch k {
	case Karat18:
		parts = 18
	case Karat21:
		parts = 21
	case Karat22:
		parts = 22
	case Karat24:
		parts = 24
	default:
		return decimal.Zero
	}
	return decimal.NewFromInt(parts).Div(decimal.NewFromInt(24)).Round(4)
}

// AllKaratGrades returns every supported grade
func AllKaratGrades() []KaratGrade {
	return []KaratGrade{Karat18, Karat21, Karat22, Karat24}
}
