package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avitans/atelier/internal/models"
	"github.com/avitans/atelier/internal/service"
	"github.com/avitans/atelier/internal/store"
	"github.com/avitans/atelier/internal/uploads"
)

func newTestRouter(t *testing.T) (pgxmock.PgxPoolIface, http.Handler) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	up, err := uploads.NewStorage(t.TempDir())
	require.NoError(t, err)

	h := NewHandler(store.New(mock), service.NewOrderService(mock), up)
	return mock, NewRouter(h, zerolog.Nop(), t.TempDir(), up.Dir())
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	_, router := newTestRouter(t)

	rr := doJSON(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreateClient(t *testing.T) {
	mock, router := newTestRouter(t)

	mock.ExpectQuery("INSERT INTO clients").
		WithArgs("Anna Petrova", "+371 2000 0001").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rr := doJSON(router, "POST", "/clients",
		models.CreateClientRequest{Name: "Anna Petrova", Phone: "+371 2000 0001"})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"success":true,"id":7}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClientRequiresName(t *testing.T) {
	_, router := newTestRouter(t)

	rr := doJSON(router, "POST", "/clients", models.CreateClientRequest{Phone: "123"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestGetClientNotFound(t *testing.T) {
	mock, router := newTestRouter(t)

	mock.ExpectQuery("SELECT id, name, phone FROM clients").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	rr := doJSON(router, "GET", "/client/404", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Client not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetClientMergesLedger(t *testing.T) {
	mock, router := newTestRouter(t)

	mock.ExpectQuery("SELECT id, name, phone FROM clients").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "phone"}).
			AddRow(int64(7), "Anna Petrova", "+371 2000 0001"))
	mock.ExpectQuery("FROM ledger").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "client_id", "date", "description", "amount"}).
			AddRow(int64(1), int64(7), "2026-08-01", "Charge for order #41", -100.0))

	rr := doJSON(router, "GET", "/client/7", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.ClientWithLedger
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	require.Len(t, resp.Ledger, 1)
	assert.Equal(t, -100.0, resp.Ledger[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPayment(t *testing.T) {
	mock, router := newTestRouter(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO ledger").
		WithArgs(int64(7), time.Now().Format(models.DateLayout), "Deposit (cash)", 150.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rr := doJSON(router, "POST", "/client/7/payment",
		models.PaymentRequest{Amount: 150.0, Description: "Deposit", Method: "cash"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPaymentZeroAmountRejected(t *testing.T) {
	_, router := newTestRouter(t)

	rr := doJSON(router, "POST", "/client/7/payment",
		models.PaymentRequest{Description: "Deposit"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestListOrders(t *testing.T) {
	mock, router := newTestRouter(t)

	mock.ExpectQuery("FROM orders o").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "client_id", "seamstress_id", "status", "price", "date",
			"fabric_photo", "style_photo", "client_name", "seamstress_name",
		}).
			AddRow(int64(2), int64(7), int64(1), models.StatusReady, (*float64)(nil), "2026-08-20",
				"", "", "Anna Petrova", "Maria"))

	rr := doJSON(router, "GET", "/orders", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "Maria", orders[0].SeamstressName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusUnknownStatusRejected(t *testing.T) {
	_, router := newTestRouter(t)

	rr := doJSON(router, "POST", "/orders/41/status",
		map[string]string{"status": "embroidery"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	mock, router := newTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT client_id, status FROM orders").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	rr := doJSON(router, "POST", "/orders/404/status",
		models.UpdateStatusRequest{Status: models.StatusSewing})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderRequiresPositivePrice(t *testing.T) {
	_, router := newTestRouter(t)

	rr := doJSON(router, "POST", "/orders/41/update",
		models.UpdateOrderRequest{Status: models.StatusReady, Price: -5})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCreateOrderMultipart(t *testing.T) {
	mock, router := newTestRouter(t)

	today := time.Now().Format(models.DateLayout)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(7), int64(2), models.StatusReceived, today, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(41)))
	mock.ExpectExec("INSERT INTO order_status_history").
		WithArgs(int64(41), models.StatusReceived, today).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("client_id", "7")
	mw.WriteField("seamstress_id", "2")
	mw.WriteField("status", "received")
	fw, err := mw.CreateFormFile("fabric_photo", "fabric.jpg")
	require.NoError(t, err)
	fw.Write([]byte("jpegdata"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/orders", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadImage(t *testing.T) {
	mock, router := newTestRouter(t)

	mock.ExpectExec("INSERT INTO order_images").
		WithArgs(int64(41), pgxmock.AnyArg(), time.Now().Format(models.DateLayout)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "sleeve.png")
	require.NoError(t, err)
	fw.Write([]byte("pngdata"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/orders/41/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "image-"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadImageMissingFile(t *testing.T) {
	_, router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no file here")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/orders/41/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
