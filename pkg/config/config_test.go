package config

import (
	"reflect"
	"testing"
)

func TestParseHandles(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "trims at and spaces", raw: " @qthomp, RaoulGMI ,@fejau_inc", want: []string{"qthomp", "RaoulGMI", "fejau_inc"}},
		{name: "drops duplicates case-insensitively", raw: "FedGuy12,fedguy12,@FEDGUY12", want: []string{"FedGuy12"}},
		{name: "skips blanks", raw: ",, ,cburniske,", want: []string{"cburniske"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseHandles(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHandles(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRunAt(t *testing.T) {
	c := &Config{}
	c.Digest.RunAt = "07:30"
	h, m, err := c.RunAt()
	if err != nil {
		t.Fatalf("RunAt: %v", err)
	}
	if h != 7 || m != 30 {
		t.Errorf("RunAt = %d:%d, want 7:30", h, m)
	}

	c.Digest.RunAt = "7pm"
	if _, _, err := c.RunAt(); err == nil {
		t.Error("expected error for malformed DIGEST_RUN_AT")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.App.Timezone = "UTC"
		c.Digest.RunAt = "23:00"
		c.Digest.MinEngagement = 50
		c.Twitter.RequestsPerWindow = 15
		c.Twitter.RateWindow = 1
		c.Twitter.PageSize = 100
		return c
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	c := valid()
	c.Digest.MinEngagement = -1
	if err := c.Validate(); err == nil {
		t.Error("negative threshold accepted")
	}

	c = valid()
	c.Twitter.PageSize = 500
	if err := c.Validate(); err == nil {
		t.Error("oversized page accepted")
	}

	c = valid()
	c.App.Timezone = "Mars/Olympus_Mons"
	if err := c.Validate(); err == nil {
		t.Error("unknown timezone accepted")
	}
}

func TestRecipients(t *testing.T) {
	c := &Config{}
	c.Email.To = "pm@example.com, cio@example.com,,"
	want := []string{"pm@example.com", "cio@example.com"}
	if got := c.Recipients(); !reflect.DeepEqual(got, want) {
		t.Errorf("Recipients() = %v, want %v", got, want)
	}
}
