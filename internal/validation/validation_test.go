package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "student@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "student@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "student+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "studentexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "student@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "stu dent@example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "correct-horse",
			wantErr:  false,
		},
		{
			name:     "exactly 8 characters",
			password: "12345678",
			wantErr:  false,
		},
		{
			name:     "too short",
			password: "1234567",
			wantErr:  true,
		},
		{
			name:     "empty",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "Priya Sharma",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "Priya",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "P",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID("chapterId", "ch-101"); err != nil {
		t.Errorf("ValidateID with value should pass, got %v", err)
	}
	if err := ValidateID("chapterId", "  "); err == nil {
		t.Error("ValidateID with blank value should fail")
	}
}

func TestValidatePercent(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{0, false},
		{50, false},
		{100, false},
		{-1, true},
		{101, true},
	}

	for _, tt := range tests {
		err := ValidatePercent("score", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePercent(%d) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidatePosition(t *testing.T) {
	tests := []struct {
		name     string
		position int
		duration int
		wantErr  bool
	}{
		{"start of video", 0, 600, false},
		{"mid video", 300, 600, false},
		{"at duration", 600, 600, false},
		{"within rounding buffer", 604, 600, false},
		{"past buffer", 606, 600, true},
		{"negative position", -1, 600, true},
		{"unknown duration skips upper bound", 9999, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePosition(tt.position, tt.duration)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePosition(%d, %d) error = %v, wantErr %v", tt.position, tt.duration, err, tt.wantErr)
			}
		})
	}
}
