package helpers

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^GYL-MEM-[0-9A-F]{8}$`)

func TestGenerateBankTransferReference(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		ref, err := GenerateBankTransferReference()
		require.NoError(t, err)
		require.Regexp(t, referencePattern, ref)
		seen[ref] = struct{}{}
	}
	// With 32 random bits the chance of any collision in 10k draws is about
	// 1.2%, so this fails roughly once in 85 runs.
	assert.Len(t, seen, 10000)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ama@example.com", NormalizeEmail("  Ama@Example.COM "))
	assert.True(t, LooksLikeEmail("a@b"))
	assert.False(t, LooksLikeEmail("ama.example.com"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"ops@gylounge.com", "host@gylounge.com"}, SplitList(" ops@gylounge.com, ,host@gylounge.com,"))
	assert.Nil(t, SplitList(""))
}

func TestFormatAccra(t *testing.T) {
	tests := []struct {
		name string
		in   string
		time string
		date string
	}{
		{"rfc3339 utc", "2026-03-14T15:00:00Z", "15:00", "Mar 14, 2026"},
		{"offset", "2026-03-14T17:30:00+02:00", "15:30", "Mar 14, 2026"},
		{"postgres text", "2026-03-14 09:05:00+00", "09:05", "Mar 14, 2026"},
		{"date only", "2026-12-01", "00:00", "Dec 1, 2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.time, FormatAccraTime(tt.in))
			assert.Equal(t, tt.date, FormatAccraDate(tt.in))
		})
	}

	assert.Equal(t, "soon", FormatAccraTime("soon"))
	assert.Equal(t, "TBD", FormatAccraDate("TBD"))
	assert.Equal(t, "15:00 - 17:00", FormatTimeRange("2026-03-14T15:00:00Z", "2026-03-14T17:00:00Z"))
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("Pay to **GYLounge Ltd**")
	assert.Contains(t, out, "<strong>GYLounge Ltd</strong>")

	out = RenderMarkdown("hi <script>alert(1)</script>")
	assert.NotContains(t, out, "<script>")
}

func TestAdminClaims(t *testing.T) {
	c := &CustomClaims{Email: "ops@gylounge.com"}
	c.Subject = "user-1"
	c.AppMetadata.Roles = []string{"staff", AdminRole}

	admin := NewAdminClaims(c)
	assert.Equal(t, "user-1", admin.UserID)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.HasRole("staff"))

	c.AppMetadata.Roles = nil
	assert.False(t, NewAdminClaims(c).IsAdmin())
}

func signHS256(t *testing.T, secret string, claims *CustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateTokenHMAC(t *testing.T) {
	v, err := NewTokenValidator(context.Background(), "", "super-secret")
	require.NoError(t, err)
	defer v.Close()

	claims := &CustomClaims{Email: "ops@gylounge.com"}
	claims.Subject = "user-1"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))

	got, err := v.ValidateToken(signHS256(t, "super-secret", claims))
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.Subject)

	_, err = v.ValidateToken(signHS256(t, "wrong-secret", claims))
	assert.Error(t, err)

	noExp := &CustomClaims{}
	_, err = v.ValidateToken(signHS256(t, "super-secret", noExp))
	assert.Error(t, err)

	expired := &CustomClaims{}
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = v.ValidateToken(signHS256(t, "super-secret", expired))
	assert.Error(t, err)

	_, err = v.ValidateToken(strings.Repeat("x", 20))
	assert.Error(t, err)
}

func TestNewTokenValidatorNeedsSource(t *testing.T) {
	_, err := NewTokenValidator(context.Background(), "", "")
	assert.Error(t, err)
}
