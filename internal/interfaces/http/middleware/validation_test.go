package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenext/backend/internal/interfaces/http/dto"
)

type signupForm struct {
	Email    string `json:"email" binding:"required,email"`
	Pincode  string `json:"pincode" binding:"required,pincode"`
	UserType string `json:"user_type" binding:"omitempty,audience"`
	GSTIN    string `json:"gstin" binding:"omitempty,gstin"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Quantity int    `json:"quantity" binding:"gte=1,lte=99"`
}

func bindSignup(body string) *httptest.ResponseRecorder {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/", func(c *gin.Context) {
		var req signupForm
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return w
}

func TestSetupValidator_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		SetupValidator()
		SetupValidator()
	})
}

func TestValidation_Accepts(t *testing.T) {
	w := bindSignup(`{"email":"a@b.in","pincode":"560001","user_type":"B2B","gstin":"27AAPFU0939F1ZV","phone":"+91 98765 43210","quantity":3}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestValidation_ReportsFieldsByJSONName(t *testing.T) {
	w := bindSignup(`{"email":"nope","pincode":"012345","user_type":"wholesale","quantity":0}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, info.Code)
	assert.NotEmpty(t, info.RequestID)

	messages := map[string]string{}
	for _, d := range info.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Invalid email format", messages["email"])
	assert.Equal(t, "Must be a 6-digit postal code", messages["pincode"])
	assert.Equal(t, "Must be b2c or b2b", messages["user_type"])
	assert.Equal(t, "Must be greater than or equal to 1", messages["quantity"])
}

func TestValidation_RejectsBadGSTINAndPhone(t *testing.T) {
	w := bindSignup(`{"email":"a@b.in","pincode":"560001","gstin":"NOTAGSTIN","phone":"12","quantity":1}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := []string{}
	for _, d := range decodeError(t, w).Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"gstin", "phone"}, fields)
}

func TestValidation_MalformedJSON(t *testing.T) {
	w := bindSignup(`{"email":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
}
