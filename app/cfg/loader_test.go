package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestValidate(t *testing.T) {
	valid := &Cfg{
		WebhookURL:         "https://oapi.dingtalk.com/robot/send?access_token=abc",
		QuickCheckInterval: 1,
		FullCheckInterval:  5,
		StalenessDays:      30,
		MinRequestInterval: 3,
	}

	if err := validate(valid); err != nil {
		t.Errorf("Valid config should pass validation, got: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Cfg)
	}{
		{"zero quick interval", func(c *Cfg) { c.QuickCheckInterval = 0 }},
		{"zero full interval", func(c *Cfg) { c.FullCheckInterval = 0 }},
		{"zero staleness window", func(c *Cfg) { c.StalenessDays = 0 }},
		{"negative request interval", func(c *Cfg) { c.MinRequestInterval = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *valid
			tt.mutate(&c)
			if err := validate(&c); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}
