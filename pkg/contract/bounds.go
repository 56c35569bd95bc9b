package contract

// Parameter bounds enforced at the input boundary. The backend remains the
// source of truth for acceptance and the client never re-validates against it.
const (
	MinTemperature  = 0.0
	MaxTemperature  = 1.0
	TemperatureStep = 0.1

	MinMaxTokens  = 500
	MaxMaxTokens  = 8000
	MaxTokensStep = 500

	MinRecordCount = 1
	MaxRecordCount = 100

	MinAge = 0
	MaxAge = 120
)

// AnyFilter is the quick-filter value meaning "no filter".
const AnyFilter = "Any"

// ClampTemperature limits t to [MinTemperature, MaxTemperature] and rounds it
// to the slider step.
func ClampTemperature(t float64) float64 {
	if t < MinTemperature {
		t = MinTemperature
	}
	if t > MaxTemperature {
		t = MaxTemperature
	}
	steps := int(t/TemperatureStep + 0.5)
	return float64(steps) / 10
}

// ClampMaxTokens limits n to [MinMaxTokens, MaxMaxTokens] on the slider step.
func ClampMaxTokens(n int) int {
	if n < MinMaxTokens {
		return MinMaxTokens
	}
	if n > MaxMaxTokens {
		return MaxMaxTokens
	}
	return (n + MaxTokensStep/2) / MaxTokensStep * MaxTokensStep
}

// ClampRecordCount limits n to [MinRecordCount, MaxRecordCount]. A
// non-positive value falls back to the minimum, like an emptied number input.
func ClampRecordCount(n int) int {
	if n < MinRecordCount {
		return MinRecordCount
	}
	if n > MaxRecordCount {
		return MaxRecordCount
	}
	return n
}
