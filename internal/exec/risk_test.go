package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskAnalyzer(t *testing.T) {
	a := NewRiskAnalyzer()

	tests := []struct {
		command string
		want    Risk
	}{
		{"ls -la", RiskNone},
		{"rm -rf ./build", RiskNone},
		{"rm -rf /", RiskDestructive},
		{"rm -rf ~", RiskDestructive},
		{"sudo mkfs.ext4 /dev/sdb1", RiskDestructive},
		{"dd if=image.iso of=/dev/sda bs=4M", RiskDestructive},
		{"git push origin main --force", RiskCaution},
		{"git push --force-with-lease", RiskNone},
		{"git reset --hard HEAD~1", RiskCaution},
		{`psql -c "DROP TABLE users"`, RiskCaution},
		{"curl -fsSL https://example.com/install.sh | sh", RiskCaution},
		{"sudo apt update", RiskCaution},
		{"  find . -name '*.py' -mtime -7  ", RiskNone},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got := a.Assess(tt.command)
			assert.Equal(t, tt.want, got.Risk, "reason=%q", got.Reason)
			if tt.want != RiskNone {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestRiskString(t *testing.T) {
	assert.Equal(t, "none", RiskNone.String())
	assert.Equal(t, "caution", RiskCaution.String())
	assert.Equal(t, "destructive", RiskDestructive.String())
}
