package calc

import (
	"strings"
	"testing"
)

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantHandled bool
		wantContain string
	}{
		{
			// Left-to-right evaluation, no precedence: (2+3)*4, not 2+(3*4).
			name:        "no operator precedence",
			text:        "what is 2 + 3 * 4",
			wantHandled: true,
			wantContain: "20",
		},
		{
			name:        "calculate keyword",
			text:        "calculate 10 - 4 / 2",
			wantHandled: true,
			wantContain: "3",
		},
		{
			name:        "multiplication alias x",
			text:        "what is 6 x 7",
			wantHandled: true,
			wantContain: "42",
		},
		{
			name:        "division alias",
			text:        "what is 10 ÷ 4",
			wantHandled: true,
			wantContain: "2.5",
		},
		{
			name:        "division by zero apologizes",
			text:        "what is 5 / 0",
			wantHandled: true,
			wantContain: "divide by zero",
		},
		{
			// Parentheses are tokenized but never grouped; evaluation stays
			// strictly left-to-right. Known limitation, locked in here.
			name:        "parentheses do not group",
			text:        "calculate 2 * (3 + 4)",
			wantHandled: true,
			wantContain: "10",
		},
		{
			name:        "plain question is not arithmetic",
			text:        "what is the capital of france",
			wantHandled: false,
		},
		{
			name:        "no trigger word",
			text:        "2 + 2",
			wantHandled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, handled := Evaluate(tt.text)
			if handled != tt.wantHandled {
				t.Fatalf("handled = %v, want %v (reply %q)", handled, tt.wantHandled, reply)
			}
			if tt.wantHandled && !strings.Contains(reply, tt.wantContain) {
				t.Errorf("reply %q does not contain %q", reply, tt.wantContain)
			}
		})
	}
}

func TestEvaluateConversion(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantHandled bool
		wantContain string
	}{
		{
			name:        "km to miles",
			text:        "convert 5 km to miles",
			wantHandled: true,
			wantContain: "3.11",
		},
		{
			name:        "celsius to fahrenheit is affine",
			text:        "100 celsius in fahrenheit",
			wantHandled: true,
			wantContain: "212.00",
		},
		{
			name:        "fahrenheit to celsius is affine",
			text:        "32 fahrenheit in celsius",
			wantHandled: true,
			wantContain: "0.00",
		},
		{
			name:        "inverse direction divides the factor",
			text:        "convert 10 pounds to kg",
			wantHandled: true,
			wantContain: "4.54",
		},
		{
			name:        "meters to km via inverse",
			text:        "2500 m in km",
			wantHandled: true,
			wantContain: "2.50",
		},
		{
			name:        "kg to pounds",
			text:        "convert 10 kg to pounds",
			wantHandled: true,
			wantContain: "22.05",
		},
		{
			name:        "unknown unit pair declines",
			text:        "convert 5 km to kg",
			wantHandled: false,
		},
		{
			name:        "unrecognized units decline",
			text:        "convert 5 parsecs to fathoms",
			wantHandled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, handled := Evaluate(tt.text)
			if handled != tt.wantHandled {
				t.Fatalf("handled = %v, want %v (reply %q)", handled, tt.wantHandled, reply)
			}
			if tt.wantHandled && !strings.Contains(reply, tt.wantContain) {
				t.Errorf("reply %q does not contain %q", reply, tt.wantContain)
			}
		})
	}
}

func TestConversionRoundTrip(t *testing.T) {
	// km -> miles -> km should land within a cent of the original after
	// two roundings.
	miles, ok := convert(100, "km", "miles")
	if !ok {
		t.Fatal("km->miles missing from table")
	}
	back, ok := convert(miles, "miles", "km")
	if !ok {
		t.Fatal("miles->km missing from table")
	}
	if diff := back - 100; diff > 0.01 || diff < -0.01 {
		t.Errorf("round trip drifted by %f", diff)
	}
}
