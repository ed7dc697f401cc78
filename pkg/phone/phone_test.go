package phone

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		countryCode string
		want        string
		wantErr     error
	}{
		{
			name: "national prefix replaced",
			raw:  "0741984208",
			want: "94741984208",
		},
		{
			name: "bare national number gets country code",
			raw:  "741984208",
			want: "94741984208",
		},
		{
			name: "formatted international number",
			raw:  "+94 741-984-208",
			want: "94741984208",
		},
		{
			name: "already normalized",
			raw:  "94741984208",
			want: "94741984208",
		},
		{
			name:        "different country code",
			raw:         "0812345678",
			countryCode: "62",
			want:        "62812345678",
		},
		{
			name:    "no digits at all",
			raw:     "+- ()",
			wantErr: ErrEmpty,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: ErrEmpty,
		},
		{
			name:    "too few digits",
			raw:     "07419",
			wantErr: ErrTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.countryCode)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Normalize(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
