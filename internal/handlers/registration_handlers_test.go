package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
)

type fakeMediaStore struct {
	url      string
	err      error
	uploaded []string
}

func (f *fakeMediaStore) Upload(_ context.Context, filename string, _ io.Reader) (string, error) {
	f.uploaded = append(f.uploaded, filename)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func newRegisterRequest(t *testing.T, fields map[string]string, withPhoto bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if withPhoto {
		part, err := writer.CreateFormFile("photo", "adi.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func registrationFields() map[string]string {
	return map[string]string{
		"nick_name":              "Adi",
		"full_name":              "Adi Wirawan",
		"gender":                 "Male",
		"birth_date":             "1995-04-12",
		"phone_number":           "081234567890",
		"fitness_goal":           "strength",
		"preferred_workout_time": "6pm-7pm",
		"transaction_date":       "2024-01-10",
		"payment_method":         "Cash",
	}
}

func TestStoreMember(t *testing.T) {
	directory := &fakeDirectory{members: []models.Member{{MemberID: 1}}}
	ledger := &fakeLedger{}
	media := &fakeMediaStore{url: "https://res.cloudinary.com/brotot/adi.jpg"}

	h := NewRegistrationHandler(directory, ledger, media, nil, config.RedisConfig{}, zerolog.Nop())
	h.now = func() time.Time { return testDate("2024-01-10") }

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRegisterRequest(t, registrationFields(), true), rec)

	require.NoError(t, h.StoreMember(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	require.Len(t, directory.appended, 1)
	member := directory.appended[0]
	assert.Equal(t, "Adi", member.NickName)
	assert.Equal(t, "6281234567890", member.PhoneNumber)
	assert.Equal(t, "https://res.cloudinary.com/brotot/adi.jpg", member.PhotoURL)

	require.Len(t, ledger.appended, 1)
	tx := ledger.appended[0]
	assert.Equal(t, models.TransactionTypeSignup, tx.Type)
	assert.Equal(t, 2, tx.MemberID)
	assert.Equal(t, "20240110-2", tx.TransactionID)
	assert.Equal(t, float64(signupAmount), tx.Amount)
	assert.Equal(t, "cash", tx.PaymentMethod)
	assert.Equal(t, testDate("2024-01-10"), tx.TransactionDate)
}

func TestStoreMemberUploadFailureWritesNothing(t *testing.T) {
	directory := &fakeDirectory{}
	ledger := &fakeLedger{}
	media := &fakeMediaStore{err: models.ErrUploadFailure}

	h := NewRegistrationHandler(directory, ledger, media, nil, config.RedisConfig{}, zerolog.Nop())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRegisterRequest(t, registrationFields(), true), rec)

	// The form re-render fails without a registered template renderer, but
	// the invariant under test is that nothing was committed.
	_ = h.StoreMember(c)

	assert.Empty(t, directory.appended)
	assert.Empty(t, ledger.appended)
}

func TestStoreMemberMissingRequiredFields(t *testing.T) {
	directory := &fakeDirectory{}
	ledger := &fakeLedger{}
	media := &fakeMediaStore{url: "https://res.cloudinary.com/brotot/adi.jpg"}

	h := NewRegistrationHandler(directory, ledger, media, nil, config.RedisConfig{}, zerolog.Nop())

	fields := registrationFields()
	delete(fields, "full_name")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newRegisterRequest(t, fields, true), rec)

	_ = h.StoreMember(c)

	assert.Empty(t, media.uploaded)
	assert.Empty(t, directory.appended)
	assert.Empty(t, ledger.appended)
}
