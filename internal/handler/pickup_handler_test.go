package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend/internal/agreement"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.PickupRequest{},
		&model.ChatMessage{},
		&model.AgreementSignature{},
		&model.PointsTransaction{},
		&model.Redemption{},
	))

	txManager := repository.NewTransactionManager(db)
	pickupRepo := repository.NewPickupRepository(db)
	chatRepo := repository.NewChatRepository(db)
	pointsRepo := repository.NewPointsRepository(db)

	pickupService := service.NewPickupService(pickupRepo, pointsRepo, chatRepo, txManager, nil)
	chatService := service.NewChatService(
		chatRepo, pickupRepo, repository.NewSignatureRepository(db), txManager, agreement.NewGenerator(), nil)
	pointsService := service.NewPointsService(pointsRepo, txManager)

	router := gin.New()
	group := router.Group("")
	NewPickupHandler(pickupService).RegisterRoutes(group)
	NewChatHandler(chatService).RegisterRoutes(group)
	NewPointsHandler(pointsService).RegisterRoutes(group)
	NewCompanyHandler().RegisterRoutes(group)
	return router, db
}

// bearerToken signs a token the auth middleware accepts with its dev secret.
func bearerToken(t *testing.T, userID uuid.UUID, name, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"name": name,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return "Bearer " + signed
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPickupEndpoints_RequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/pickup-requests", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePickup_EndToEnd(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := uuid.New()
	token := bearerToken(t, userID, "Alice Wanjiku", model.RoleUser)

	w := doRequest(router, http.MethodPost, "/pickup-requests", token, `{
		"company_id": 1,
		"waste_type": "recyclable",
		"waste_description": "Plastic bottles",
		"location": "Westlands, Nairobi",
		"preferred_date": "2026-09-01",
		"preferred_time": "morning"
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	var pickup model.PickupRequest
	require.NoError(t, json.Unmarshal(env.Data, &pickup))
	require.Equal(t, "GreenCycle Ltd", pickup.CompanyName)
	require.Equal(t, model.PickupStatusPending, pickup.Status)
	require.Equal(t, userID, pickup.UserID)

	// the owner sees it in their list
	w = doRequest(router, http.MethodGet, "/pickup-requests", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var pickups []model.PickupRequest
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &pickups))
	require.Len(t, pickups, 1)
}

func TestCreatePickup_MissingFieldsNotice(t *testing.T) {
	router, _ := newTestRouter(t)
	token := bearerToken(t, uuid.New(), "Alice", model.RoleUser)

	w := doRequest(router, http.MethodPost, "/pickup-requests", token, `{"company_id": 1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Please fill in all required fields.", decodeEnvelope(t, w).Error)
}

func TestUpdatePickupStatus_RoleEnforcement(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := uuid.New()
	userToken := bearerToken(t, userID, "Alice", model.RoleUser)
	companyToken := bearerToken(t, uuid.New(), "GreenCycle Ops", model.RoleCompany)

	w := doRequest(router, http.MethodPost, "/pickup-requests", userToken, `{
		"company_id": 1,
		"location": "Nairobi",
		"preferred_date": "2026-09-01"
	}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var pickup model.PickupRequest
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &pickup))

	statusPath := "/pickup-requests/" + pickup.ID.String() + "/status"

	// clients cannot move the lifecycle
	w = doRequest(router, http.MethodPatch, statusPath, userToken, `{"status": "in_progress"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	// the company can
	w = doRequest(router, http.MethodPatch, statusPath, companyToken, `{"status": "in_progress"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// completing awards points to the pickup's owner
	w = doRequest(router, http.MethodPatch, statusPath, companyToken, `{"status": "completed", "amount_kes": "1500"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/points/balance", userToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"balance": 30}`, string(decodeEnvelope(t, w).Data))
}

func TestChatAndSignature_EndToEnd(t *testing.T) {
	router, _ := newTestRouter(t)
	userID := uuid.New()
	userToken := bearerToken(t, userID, "Alice Wanjiku", model.RoleUser)
	companyToken := bearerToken(t, uuid.New(), "GreenCycle Ops", model.RoleCompany)

	w := doRequest(router, http.MethodPost, "/pickup-requests", userToken, `{
		"company_id": 1,
		"location": "Nairobi",
		"preferred_date": "2026-09-01"
	}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var pickup model.PickupRequest
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &pickup))
	base := "/pickup-requests/" + pickup.ID.String()

	// a stranger cannot read the thread
	strangerToken := bearerToken(t, uuid.New(), "Mallory", model.RoleUser)
	w = doRequest(router, http.MethodGet, base+"/messages", strangerToken, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// chat, share the agreement, sign from both sides
	w = doRequest(router, http.MethodPost, base+"/messages", userToken, `{"message": "When can you collect?"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, base+"/agreement", companyToken, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var agreementMsg model.ChatMessage
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &agreementMsg))
	require.Equal(t, model.MessageTypeAgreementPDF, agreementMsg.MessageType)
	require.True(t, agreementMsg.Metadata.RequiresSignature)

	w = doRequest(router, http.MethodPost, base+"/sign", userToken, `{"signature_data": "Alice Wanjiku"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// signing twice for the same party conflicts
	w = doRequest(router, http.MethodPost, base+"/sign", userToken, `{"signature_data": "Alice Wanjiku"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, http.MethodPost, base+"/sign", companyToken, `{"signature_data": "GreenCycle Ltd"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var signed model.PickupRequest
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &signed))
	require.True(t, signed.AgreementSignedUser)
	require.True(t, signed.AgreementSignedCompany)

	// the thread now holds: text, agreement, two system notices
	w = doRequest(router, http.MethodGet, base+"/messages", userToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var messages []model.ChatMessage
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &messages))
	require.Len(t, messages, 4)
	require.Equal(t, model.MessageTypeText, messages[0].MessageType)
}

func TestRedemptionFlow_EndToEnd(t *testing.T) {
	router, db := newTestRouter(t)
	userID := uuid.New()
	token := bearerToken(t, userID, "Alice", model.RoleUser)

	require.NoError(t, db.Create(&model.PointsTransaction{
		UserID: userID,
		Amount: 120,
		Type:   model.PointsTypeEarned,
	}).Error)

	w := doRequest(router, http.MethodPost, "/redemptions", token, `{"type": "airtime", "points": 50}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var redemption model.Redemption
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &redemption))
	require.Equal(t, model.RedemptionStatusActive, redemption.Status)

	// voucher QR is served as a PNG, only to its owner
	w = doRequest(router, http.MethodGet, "/redemptions/"+redemption.ID.String()+"/qr", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))

	otherToken := bearerToken(t, uuid.New(), "Mallory", model.RoleUser)
	w = doRequest(router, http.MethodGet, "/redemptions/"+redemption.ID.String()+"/qr", otherToken, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// over-spend is rejected against the live balance
	w = doRequest(router, http.MethodPost, "/redemptions", token, `{"type": "brand_offer", "points": 100}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Insufficient points balance.", decodeEnvelope(t, w).Error)
}

func TestCompanyCatalog_Public(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/companies", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var companies []map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &companies))
	require.Len(t, companies, 6)

	w = doRequest(router, http.MethodGet, "/companies?type=recycling&material=plastic", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &companies))
	require.Len(t, companies, 2)

	w = doRequest(router, http.MethodGet, "/companies/2", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var company map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &company))
	require.Equal(t, "EcoFlame Industries", company["name"])

	w = doRequest(router, http.MethodGet, "/companies/99", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
