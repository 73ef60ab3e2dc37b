package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"brotot_gym/internal/config"
	"brotot_gym/internal/models"
	"brotot_gym/internal/services"
)

// signupAmount is the fixed initial membership fee.
const signupAmount = 100

// RegistrationHandler serves the sign-up page and its write path.
type RegistrationHandler struct {
	directory MemberDirectory
	ledger    TransactionLedger
	media     MediaStore
	cache     *services.RedisCache
	cacheTTL  time.Duration
	validate  *validator.Validate
	log       zerolog.Logger
	now       func() time.Time
}

func NewRegistrationHandler(directory MemberDirectory, ledger TransactionLedger, media MediaStore, cache *services.RedisCache, cfg config.RedisConfig, log zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		directory: directory,
		ledger:    ledger,
		media:     media,
		cache:     cache,
		cacheTTL:  cfg.CacheTTL,
		validate:  validator.New(),
		log:       log,
		now:       time.Now,
	}
}

type registrationForm struct {
	NickName             string `validate:"required"`
	FullName             string `validate:"required"`
	Gender               string `validate:"required"`
	BirthDate            string
	PhoneNumber          string `validate:"required"`
	MedicalInfo          string
	FitnessGoal          string `validate:"required"`
	PreferredWorkoutTime string `validate:"required"`
	TransactionDate      string
	PaymentMethod        string
}

func registrationFormFromRequest(c echo.Context) registrationForm {
	return registrationForm{
		NickName:             c.FormValue("nick_name"),
		FullName:             c.FormValue("full_name"),
		Gender:               c.FormValue("gender"),
		BirthDate:            c.FormValue("birth_date"),
		PhoneNumber:          c.FormValue("phone_number"),
		MedicalInfo:          c.FormValue("medical_info"),
		FitnessGoal:          c.FormValue("fitness_goal"),
		PreferredWorkoutTime: c.FormValue("preferred_workout_time"),
		TransactionDate:      c.FormValue("transaction_date"),
		PaymentMethod:        c.FormValue("payment_method"),
	}
}

// RegisterPage renders the sign-up form.
func (h *RegistrationHandler) RegisterPage(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, registrationForm{TransactionDate: h.now().Format("2006-01-02")}, "")
}

// StoreMember validates the sign-up form, uploads the photo, appends the
// member row and the initial signup transaction. A failed photo upload
// aborts the whole registration; no partial record is written.
func (h *RegistrationHandler) StoreMember(c echo.Context) error {
	ctx := c.Request().Context()
	form := registrationFormFromRequest(c)

	if err := h.validate.Struct(form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, form, "Please fill out all required fields.")
	}

	formattedPhone, err := services.FormatPhoneNumber(form.PhoneNumber)
	if err != nil {
		return h.renderForm(c, http.StatusBadRequest, form, "Invalid phone number format. Please enter a valid Indonesian phone number.")
	}

	txDate := h.now()
	if form.TransactionDate != "" {
		txDate, err = time.Parse("2006-01-02", form.TransactionDate)
		if err != nil {
			return h.renderForm(c, http.StatusBadRequest, form, "Invalid membership start date.")
		}
	}

	photo, err := c.FormFile("photo")
	if err != nil {
		return h.renderForm(c, http.StatusBadRequest, form, "Please upload the member's photo.")
	}
	file, err := photo.Open()
	if err != nil {
		return h.renderForm(c, http.StatusBadRequest, form, "Could not read the uploaded photo.")
	}
	defer file.Close()

	photoURL, err := h.media.Upload(ctx, photo.Filename, file)
	if err != nil {
		h.log.Error().Err(err).Msg("photo upload failed")
		return h.renderForm(c, http.StatusBadGateway, form, "Failed to upload photo.")
	}

	member := models.Member{
		NickName:             form.NickName,
		FullName:             form.FullName,
		Gender:               form.Gender,
		BirthDate:            form.BirthDate,
		PhoneNumber:          formattedPhone,
		MedicalInfo:          form.MedicalInfo,
		FitnessGoal:          form.FitnessGoal,
		PreferredWorkoutTime: form.PreferredWorkoutTime,
		PhotoURL:             photoURL,
	}

	memberID, err := h.directory.Append(ctx, member)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register member")
	}

	transactions, err := loadTransactions(ctx, h.cache, h.cacheTTL, h.ledger)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transactions")
	}

	tx := models.Transaction{
		TransactionID:    models.NextTransactionID(transactions, txDate, memberID),
		MemberID:         memberID,
		MembershipTypeID: models.MembershipTypes[0].ID,
		Type:             models.TransactionTypeSignup,
		Amount:           signupAmount,
		PaymentMethod:    models.PaymentMethodForLabel(form.PaymentMethod),
		TransactionDate:  txDate,
	}
	if err := h.ledger.Append(ctx, tx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record signup transaction")
	}

	h.log.Info().Int("member_id", memberID).Str("full_name", member.FullName).Msg("member registered")
	invalidate(ctx, h.cache, services.CacheKeyMembers, services.CacheKeyTransactions)

	return c.Redirect(http.StatusSeeOther, "/members?notice=Member+registered!")
}

func (h *RegistrationHandler) renderForm(c echo.Context, status int, form registrationForm, errorMessage string) error {
	return c.Render(status, "register.html", map[string]interface{}{
		"Title":           "Sign Up",
		"ActiveNav":       "register",
		"Username":        getStringFromContext(c, "username"),
		"Form":            form,
		"Error":           errorMessage,
		"GenderOptions":   models.GenderOptions,
		"WorkoutTimes":    models.WorkoutTimes,
		"MembershipTypes": models.MembershipTypes,
		"PaymentOptions":  models.PaymentOptions,
	})
}
