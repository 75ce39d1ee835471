package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"3.11.4", Version{3, 11, 4}, false},
		{"v1.81.0", Version{1, 81, 0}, false},
		{"3.7", Version{3, 7, 0}, false},
		{"3", Version{3, 0, 0}, false},
		{"v22", Version{22, 0, 0}, false},
		{"", Version{}, true},
		{"abc", Version{}, true},
		{"1.2.3.4", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseOptional(t *testing.T) {
	v, err := ParseOptional("")
	if v != nil || err != nil {
		t.Errorf("ParseOptional(\"\") = %v, %v, want nil, nil", v, err)
	}

	v, err = ParseOptional("3.9")
	if err != nil {
		t.Fatalf("ParseOptional(3.9) error = %v", err)
	}
	if v == nil || *v != (Version{3, 9, 0}) {
		t.Errorf("ParseOptional(3.9) = %v, want 3.9.0", v)
	}

	if _, err := ParseOptional("not-a-version!"); err == nil {
		t.Error("ParseOptional should reject malformed input")
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		input string
		want  Version
	}{
		{"Python 3.11.4", Version{3, 11, 4}},
		{"cargo 1.81.0 (2dbb1af80 2024-08-20)", Version{1, 81, 0}},
		{"rustc 1.81.0", Version{1, 81, 0}},
		{"v18.17.0", Version{18, 17, 0}},
		{"Python 2.7.18 :: Anaconda, Inc.", Version{2, 7, 18}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Extract(tt.input)
			if err != nil {
				t.Errorf("Extract(%q) error = %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := Extract("no digits here"); err == nil {
		t.Error("Extract should fail when no version is present")
	}
}
