package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectcrm/models"
)

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := ValidateStruct(models.EmailInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prospect_id is required")
	assert.Contains(t, err.Error(), "subject is required")

	bad := "not-an-email"
	err = ValidateStruct(models.ClientInput{
		ComitenteNumber: Pointer("COM1"),
		Name:            Pointer("Empresa"),
		Email:           &bad,
	})
	require.Error(t, err)
	assert.Equal(t, "mail must be a valid email", err.Error())

	assert.NoError(t, ValidateStruct(models.ClientInput{
		ComitenteNumber: Pointer("COM1"),
		Name:            Pointer("Empresa"),
	}))
}

func TestValidateStructRequiredCount(t *testing.T) {
	err := ValidateStruct(models.StageActionInput{
		StageID:       Pointer("1"),
		Type:          Pointer("Llamada"),
		RequiredCount: Pointer(0),
	})
	require.Error(t, err)
	assert.Equal(t, "required_count must be at least 1", err.Error())
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWTToken("user-1", "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseJWTToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = ParseJWTToken(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWTToken("user-1", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWTToken(expired, "secret")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2 days", FormatDuration(50*time.Hour))
	assert.Equal(t, "1.5 hours", FormatDuration(90*time.Minute))
	assert.Equal(t, "2.0 minutes", FormatDuration(2*time.Minute))
	assert.Equal(t, "5.0 seconds", FormatDuration(5*time.Second))
}

func TestBuildProspectMessage(t *testing.T) {
	data := NewProspectEmail("juan@email.com", "Bienvenida", "Hola <Juan>", "user1")
	msg, err := BuildMessage("crm@davalores.com.ar", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"juan@email.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Bienvenida"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hola &lt;Juan&gt;")

	_, err = BuildMessage("crm@davalores.com.ar", EmailData{Template: "missing"})
	assert.Error(t, err)
}
