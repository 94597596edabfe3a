package schedule

import "testing"

func TestValidateCron(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "hourly", expr: CronHourly},
		{name: "daily", expr: CronDaily},
		{name: "daily at hour", expr: "cron(0 17 ? * * *)"},
		{name: "day of week", expr: "cron(0 12 ? * MON-FRI *)"},
		{name: "missing wrapper", expr: "0 * ? * * *", wantErr: true},
		{name: "five fields", expr: "cron(0 * * * *)", wantErr: true},
		{name: "seven fields", expr: "cron(0 0 * * ? * *)", wantErr: true},
		{name: "bad characters", expr: "cron(0 * ? * * $)", wantErr: true},
		{name: "both days concrete", expr: "cron(0 0 1 * MON *)", wantErr: true},
		{name: "empty", expr: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCron(tt.expr)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q", tt.expr)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.expr, err)
			}
		})
	}
}

func TestDailyAt(t *testing.T) {
	expr, err := DailyAt(17)
	if err != nil {
		t.Fatalf("DailyAt failed: %v", err)
	}
	if expr != "cron(0 17 ? * * *)" {
		t.Errorf("DailyAt(17) = %q", expr)
	}
	if err := ValidateCron(expr); err != nil {
		t.Errorf("DailyAt output should validate: %v", err)
	}

	if _, err := DailyAt(24); err == nil {
		t.Error("expected error for hour 24")
	}
	if _, err := DailyAt(-1); err == nil {
		t.Error("expected error for negative hour")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "churn-data-quality"},
		{name: "single char", input: "a"},
		{name: "digits", input: "monitor-2026"},
		{name: "empty", input: "", wantErr: true},
		{name: "leading hyphen", input: "-monitor", wantErr: true},
		{name: "trailing hyphen", input: "monitor-", wantErr: true},
		{name: "underscore", input: "my_monitor", wantErr: true},
		{name: "too long", input: "a123456789012345678901234567890123456789012345678901234567890123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}

func TestAnalyzerImageURI(t *testing.T) {
	uri, err := AnalyzerImageURI("us-east-1")
	if err != nil {
		t.Fatalf("AnalyzerImageURI failed: %v", err)
	}
	want := "156813124566.dkr.ecr.us-east-1.amazonaws.com/sagemaker-model-monitor-analyzer"
	if uri != want {
		t.Errorf("uri = %q, want %q", uri, want)
	}

	if _, err := AnalyzerImageURI("mars-north-1"); err == nil {
		t.Error("expected error for unknown region")
	}
}
