package devserver

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

var (
	firstNames = []string{"Ava", "Liam", "Maya", "Noah", "Zoe", "Omar", "Iris", "Theo"}
	lastNames  = []string{"Garcia", "Nguyen", "Okafor", "Schmidt", "Patel", "Rossi", "Kim"}
	genders    = []string{"Male", "Female"}
	states     = []string{"CA", "FL", "IL", "NY", "TX", "WA"}
	cities     = map[string]string{"CA": "Fresno", "FL": "Tampa", "IL": "Peoria", "NY": "Albany", "TX": "Austin", "WA": "Tacoma"}
	payers     = map[string]string{"Commercial": "Acme Health", "Medicaid": "State Medicaid", "Medicare": "CMS", "Self-Pay": "None"}
	planTypes  = []string{"Commercial", "Medicaid", "Medicare", "Self-Pay"}
	claimState = []string{"active", "draft", "cancelled"}
	vitals     = []struct{ code, display, unit string }{
		{"8867-4", "Heart rate", "beats/min"},
		{"8310-5", "Body temperature", "Cel"},
		{"29463-7", "Body weight", "kg"},
	}
)

// referenceDate anchors birth and service dates so output does not drift
// with the wall clock.
var referenceDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// recordGenerator produces placeholder rows. The same prompt and filters
// always yield the same records, and rows of different resources generated
// in one request reference each other by index.
type recordGenerator struct {
	seed    int
	filters *contract.QuickInputs
}

func newRecordGenerator(prompt string, filters *contract.QuickInputs) recordGenerator {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return recordGenerator{seed: int(h.Sum32() % 997), filters: filters}
}

func (g recordGenerator) generate(kind contract.ResourceKind, n int) contract.RecordSet {
	out := make(contract.RecordSet, 0, n)
	for i := 0; i < n; i++ {
		switch kind {
		case contract.ResourcePatient:
			out = append(out, g.patient(i))
		case contract.ResourceCoverage:
			out = append(out, g.coverage(i))
		case contract.ResourceClaim:
			out = append(out, g.claim(i))
		case contract.ResourceObservation:
			out = append(out, g.observation(i))
		}
	}
	return out
}

func pick(values []string, i int) string {
	return values[i%len(values)]
}

func recordID(kind contract.ResourceKind, i int) string {
	return fmt.Sprintf("%s-%03d", kind, i+1)
}

func (g recordGenerator) ageBounds() (int, int) {
	lo, hi := 18, 65
	if g.filters != nil {
		if g.filters.AgeMin != nil {
			lo = *g.filters.AgeMin
		}
		if g.filters.AgeMax != nil {
			hi = *g.filters.AgeMax
		}
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func (g recordGenerator) gender(i int) string {
	if g.filters != nil && g.filters.Gender != "" {
		return g.filters.Gender
	}
	return pick(genders, g.seed+i)
}

func (g recordGenerator) state(i int) string {
	if g.filters != nil && g.filters.State != "" {
		return g.filters.State
	}
	return pick(states, g.seed+i)
}

func (g recordGenerator) insuranceType(i int) string {
	if g.filters != nil && g.filters.InsuranceType != "" {
		return g.filters.InsuranceType
	}
	return pick(planTypes, g.seed+i)
}

func (g recordGenerator) patient(i int) contract.Record {
	lo, hi := g.ageBounds()
	age := lo + (g.seed+i*7)%(hi-lo+1)
	first := pick(firstNames, g.seed+i)
	last := pick(lastNames, g.seed+i*3)
	state := g.state(i)
	city := cities[state]
	if city == "" {
		city = "Springfield"
	}
	n := g.seed*100 + i
	return contract.Record{
		"id":                    recordID(contract.ResourcePatient, i),
		"first_name":            first,
		"last_name":             last,
		"gender":                g.gender(i),
		"age":                   age,
		"birth_date":            referenceDate.AddDate(-age, 0, -(i % 365)).Format("2006-01-02"),
		"ssn":                   fmt.Sprintf("%03d-%02d-%04d", 100+n%800, 10+n%89, 1000+n%9000),
		"medical_record_number": fmt.Sprintf("MRN%07d", n),
		"phone":                 fmt.Sprintf("555-%03d-%04d", n%1000, (n*31)%10000),
		"email":                 fmt.Sprintf("%s.%s%d@example.org", first, last, i+1),
		"address_line":          fmt.Sprintf("%d Main St", 100+n%900),
		"city":                  city,
		"state":                 state,
		"address":               map[string]any{"city": city, "state": state, "country": "US"},
	}
}

func (g recordGenerator) coverage(i int) contract.Record {
	plan := g.insuranceType(i)
	n := g.seed*100 + i
	return contract.Record{
		"id":             recordID(contract.ResourceCoverage, i),
		"patient_id":     recordID(contract.ResourcePatient, i),
		"subscriber_id":  fmt.Sprintf("SUB%06d", n),
		"member_id":      fmt.Sprintf("MEM%06d", n*7%1000000),
		"insurance_type": plan,
		"payer_name":     payers[plan],
		"status":         "active",
		"start_date":     referenceDate.AddDate(0, -(i % 12), 0).Format("2006-01-02"),
	}
}

func (g recordGenerator) claim(i int) contract.Record {
	n := g.seed*100 + i
	return contract.Record{
		"id":                     recordID(contract.ResourceClaim, i),
		"patient_id":             recordID(contract.ResourcePatient, i),
		"coverage_id":            recordID(contract.ResourceCoverage, i),
		"patient_account_number": fmt.Sprintf("ACCT%08d", n),
		"status":                 pick(claimState, g.seed+i),
		"total_amount":           float64(50+(n*37)%4950) + 0.5,
		"currency":               "USD",
		"service_date":           referenceDate.AddDate(0, 0, -(i*3)%90).Format("2006-01-02"),
		"diagnosis_codes":        []any{pick([]string{"E11.9", "I10", "J06.9", "M54.5"}, g.seed+i)},
	}
}

func (g recordGenerator) observation(i int) contract.Record {
	v := vitals[(g.seed+i)%len(vitals)]
	value := 60 + (g.seed+i*13)%40
	return contract.Record{
		"id":             recordID(contract.ResourceObservation, i),
		"patient_id":     recordID(contract.ResourcePatient, i),
		"status":         "final",
		"code":           v.code,
		"display":        v.display,
		"value":          value,
		"unit":           v.unit,
		"effective_date": referenceDate.AddDate(0, 0, -i).Format("2006-01-02"),
	}
}
