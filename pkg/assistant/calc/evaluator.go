package calc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Evaluate recognizes arithmetic ("what is 2 + 3") and unit conversion
// ("convert 5 km to miles", "100 celsius in fahrenheit") requests.
// The second return value is false when the text matches neither pattern,
// signalling the caller to keep routing.
func Evaluate(text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))

	if reply, ok := evaluateArithmetic(lower); ok {
		return reply, true
	}
	if reply, ok := evaluateConversion(lower); ok {
		return reply, true
	}
	return "", false
}

// --- Arithmetic ---

var arithmeticPattern = regexp.MustCompile(`^(?:what is|what's|calculate)\s+([\d\s()+\-*/x÷.,]+)\??$`)

// evaluateArithmetic computes the expression strictly left to right.
// There is NO operator precedence: "2 + 3 * 4" is 20, not 14. Parentheses
// are tokenized but do not group.
func evaluateArithmetic(text string) (string, bool) {
	m := arithmeticPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	expr := strings.NewReplacer("x", "*", "÷", "/", ",", "", "(", " ", ")", " ").Replace(m[1])
	numbers, operators, err := tokenize(expr)
	if err != nil || len(numbers) == 0 || len(operators) != len(numbers)-1 {
		return "", false
	}

	result := numbers[0]
	for i, op := range operators {
		operand := numbers[i+1]
		switch op {
		case "+":
			result += operand
		case "-":
			result -= operand
		case "*":
			result *= operand
		case "/":
			if operand == 0 {
				return "Sorry, I can't divide by zero. Try a different calculation.", true
			}
			result /= operand
		}
	}

	return "The answer is " + strconv.FormatFloat(result, 'f', -1, 64) + ".", true
}

func tokenize(expr string) ([]float64, []string, error) {
	var numbers []float64
	var operators []string
	var current strings.Builder

	flush := func() error {
		if current.Len() == 0 {
			return nil
		}
		n, err := strconv.ParseFloat(current.String(), 64)
		if err != nil {
			return err
		}
		numbers = append(numbers, n)
		current.Reset()
		return nil
	}

	for _, r := range expr {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			current.WriteRune(r)
		case r == '+' || r == '*' || r == '/':
			if err := flush(); err != nil {
				return nil, nil, err
			}
			operators = append(operators, string(r))
		case r == '-':
			// A minus directly after an operator (or at the start) is a sign.
			if current.Len() == 0 && len(numbers) == len(operators) {
				current.WriteRune(r)
			} else {
				if err := flush(); err != nil {
					return nil, nil, err
				}
				operators = append(operators, "-")
			}
		case r == ' ' || r == '\t':
			if err := flush(); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	return numbers, operators, nil
}

// --- Unit conversion ---

var conversionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`convert\s+(-?[\d.]+)\s*([a-z°]+)\s+to\s+([a-z°]+)`),
	regexp.MustCompile(`(-?[\d.]+)\s*([a-z°]+)\s+in\s+([a-z°]+)`),
}

// conversion is one directed table entry: either a linear factor or an
// explicit function. Affine pairs (celsius/fahrenheit) must be present as
// functions in BOTH directions; inverting an affine map by division would
// be wrong, so the inverse-divide fallback only applies to factors.
type conversion struct {
	factor float64
	fn     func(float64) float64
}

var conversionTable = map[string]map[string]conversion{
	"km": {
		"miles": {factor: 0.621371},
		"m":     {factor: 1000},
	},
	"miles": {
		"km": {factor: 1.60934},
	},
	"celsius": {
		"fahrenheit": {fn: func(c float64) float64 { return c*9/5 + 32 }},
	},
	"fahrenheit": {
		"celsius": {fn: func(f float64) float64 { return (f - 32) * 5 / 9 }},
	},
	"kg": {
		"pounds": {factor: 2.20462},
	},
	"m": {
		"feet": {factor: 3.28084},
	},
}

var unitAliases = map[string]string{
	"kilometers": "km", "kilometres": "km", "kilometer": "km", "kilometre": "km", "km": "km",
	"miles": "miles", "mile": "miles", "mi": "miles",
	"meters": "m", "metres": "m", "meter": "m", "metre": "m", "m": "m",
	"celsius": "celsius", "c": "celsius", "°c": "celsius", "centigrade": "celsius",
	"fahrenheit": "fahrenheit", "f": "fahrenheit", "°f": "fahrenheit",
	"kilograms": "kg", "kilogram": "kg", "kgs": "kg", "kg": "kg",
	"pounds": "pounds", "pound": "pounds", "lbs": "pounds", "lb": "pounds",
	"feet": "feet", "foot": "feet", "ft": "feet",
}

func evaluateConversion(text string) (string, bool) {
	for _, pattern := range conversionPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		from, okFrom := unitAliases[m[2]]
		to, okTo := unitAliases[m[3]]
		if !okFrom || !okTo {
			continue
		}

		result, ok := convert(value, from, to)
		if !ok {
			continue
		}
		return fmt.Sprintf("%s %s is %.2f %s.", m[1], from, result, to), true
	}
	return "", false
}

func convert(value float64, from, to string) (float64, bool) {
	if entry, ok := conversionTable[from][to]; ok {
		return apply(entry, value), true
	}
	// Try the declared inverse direction.
	if entry, ok := conversionTable[to][from]; ok {
		if entry.fn != nil {
			// Affine conversions need their own inverse entry.
			return 0, false
		}
		return value / entry.factor, true
	}
	return 0, false
}

func apply(entry conversion, value float64) float64 {
	if entry.fn != nil {
		return entry.fn(value)
	}
	return value * entry.factor
}
