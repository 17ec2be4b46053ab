package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/rates"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack: real HTTP layer, middleware,
// handlers and services, the real rate provider client pointed at a stub
// provider, in-memory Redis (miniredis) for the rate snapshot, and
// in-memory postgres repos. End-to-end except for the database itself.

type testApp struct {
	server   *httptest.Server
	rateSrv  *httptest.Server
	redis    *miniredis.Miniredis
	walletDB *inMemoryWalletRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	// Stub exchange rate provider: USD is the reference unit.
	rateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"USD":1,"EUR":0.92,"GBP":0.79}`)
	}))

	rateProvider := rates.NewClient(nil, rateSrv.URL, "test-api-key")
	rateSnapshot := redisStorage.NewRateSnapshot(rdb)

	// In-memory repos
	walletRepo := newInMemoryWalletRepo()
	userRepo := newInMemoryUserRepo(walletRepo)
	logRepo := newInMemoryTransferLogRepo()
	transactor := newInMemoryTransactor()

	// Business services
	log := logger.New("debug", false)
	rateCache := service.NewRateCache(rateProvider, rateSnapshot, log)
	converter := service.NewConverter(rateCache)
	userSvc := service.NewUserService(userRepo, log)
	walletSvc := service.NewWalletService(walletRepo, rateCache, transactor, log)
	transferSvc := service.NewTransferService(walletRepo, logRepo, converter, transactor, log)
	historySvc := service.NewHistoryService(logRepo, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		UserSvc:        userSvc,
		WalletSvc:      walletSvc,
		TransferSvc:    transferSvc,
		HistorySvc:     historySvc,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:   server,
		rateSrv:  rateSrv,
		redis:    mr,
		walletDB: walletRepo,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.rateSrv.Close()
	a.redis.Close()
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_UserLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	// Register
	userID := createUser(t, app, "Alice", "Smith", "alice@example.com")

	// Fetch it back
	resp, err := http.Get(app.server.URL + "/api/v1/users/" + userID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	assert.Equal(t, "Alice", data["name"])
	assert.Equal(t, "alice@example.com", data["email"])

	// Same email again is rejected
	regBody, _ := json.Marshal(map[string]string{
		"name":    "Other",
		"surname": "Person",
		"email":   "alice@example.com",
	})
	resp2, err := http.Post(app.server.URL+"/api/v1/users", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	// Delete cascades to wallets
	number := createWallet(t, app, userID, "USD")

	req, _ := http.NewRequest(http.MethodDelete, app.server.URL+"/api/v1/users/"+userID, nil)
	resp3, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)

	gone, err := app.walletDB.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	assert.Nil(t, gone, "wallet should be removed with its owner")
}

func TestIntegration_WalletCreation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := createUser(t, app, "Bob", "Jones", "bob@example.com")

	number := createWallet(t, app, userID, "USD")
	assert.Len(t, number, 16)
	assert.Equal(t, "USD", number[13:])

	// Second wallet in the same currency is rejected
	body, _ := json.Marshal(map[string]string{"currency": "USD"})
	resp, err := http.Post(app.server.URL+"/api/v1/users/"+userID+"/wallets", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Currency absent from the rate table is rejected
	body, _ = json.Marshal(map[string]string{"currency": "XXX"})
	resp2, err := http.Post(app.server.URL+"/api/v1/users/"+userID+"/wallets", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotAcceptable, resp2.StatusCode)

	// A second currency is fine
	createWallet(t, app, userID, "EUR")

	resp3, err := http.Get(app.server.URL + "/api/v1/users/" + userID + "/wallets")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)

	data := decodeData(t, resp3)
	wallets := data["wallets"].(map[string]interface{})
	assert.Len(t, wallets, 2)
	for _, balance := range wallets {
		assert.Equal(t, "0.00", balance)
	}
}

func TestIntegration_TopUp(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := createUser(t, app, "Carol", "White", "carol@example.com")
	number := createWallet(t, app, userID, "USD")

	balance := topUp(t, app, userID, number, "150.25")
	assert.Equal(t, "150.25", balance)

	balance = topUp(t, app, userID, number, "49.75")
	assert.Equal(t, "200.00", balance)

	// Negative and malformed amounts are rejected before touching the wallet
	for _, amount := range []string{"-5", "0", "1.005", "ten"} {
		body, _ := json.Marshal(map[string]string{"amount": amount})
		resp, err := http.Post(app.server.URL+"/api/v1/users/"+userID+"/wallets/"+number+"/top-up", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "amount %q should be rejected", amount)
	}

	// Topping up someone else's wallet looks like not-found
	otherID := createUser(t, app, "Dave", "Black", "dave@example.com")
	body, _ := json.Marshal(map[string]string{"amount": "10.00"})
	resp, err := http.Post(app.server.URL+"/api/v1/users/"+otherID+"/wallets/"+number+"/top-up", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntegration_TransferSameCurrency(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceID := createUser(t, app, "Alice", "Smith", "alice@example.com")
	bobID := createUser(t, app, "Bob", "Jones", "bob@example.com")
	aliceWallet := createWallet(t, app, aliceID, "USD")
	bobWallet := createWallet(t, app, bobID, "USD")

	topUp(t, app, aliceID, aliceWallet, "500.00")

	log := send(t, app, aliceID, aliceWallet, bobWallet, "120.50", http.StatusCreated)
	assert.Equal(t, aliceWallet, log["sender"])
	assert.Equal(t, bobWallet, log["receiver"])
	assert.Equal(t, "120.50", log["money_sent"])
	assert.Equal(t, "120.50", log["money_received"])
	assert.Equal(t, "USD", log["currency_sent"])
	assert.Equal(t, "USD", log["currency_received"])
	assert.NotEmpty(t, log["transfer_id"])
	assert.NotEmpty(t, log["paid_on"])

	assert.Equal(t, "379.50", walletBalance(t, app, aliceID, aliceWallet))
	assert.Equal(t, "120.50", walletBalance(t, app, bobID, bobWallet))
}

func TestIntegration_TransferCrossCurrency(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceID := createUser(t, app, "Alice", "Smith", "alice@example.com")
	bobID := createUser(t, app, "Bob", "Jones", "bob@example.com")
	aliceWallet := createWallet(t, app, aliceID, "USD")
	bobWallet := createWallet(t, app, bobID, "EUR")

	topUp(t, app, aliceID, aliceWallet, "100.00")

	// USD -> EUR at 0.92: sender loses 100.00, receiver gains 92.00
	log := send(t, app, aliceID, aliceWallet, bobWallet, "100.00", http.StatusCreated)
	assert.Equal(t, "100.00", log["money_sent"])
	assert.Equal(t, "92.00", log["money_received"])
	assert.Equal(t, "USD", log["currency_sent"])
	assert.Equal(t, "EUR", log["currency_received"])

	assert.Equal(t, "0.00", walletBalance(t, app, aliceID, aliceWallet))
	assert.Equal(t, "92.00", walletBalance(t, app, bobID, bobWallet))

	// The wallet is now empty; the next transfer bounces
	send(t, app, aliceID, aliceWallet, bobWallet, "0.01", http.StatusUnprocessableEntity)
}

func TestIntegration_TransferValidation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceID := createUser(t, app, "Alice", "Smith", "alice@example.com")
	bobID := createUser(t, app, "Bob", "Jones", "bob@example.com")
	aliceWallet := createWallet(t, app, aliceID, "USD")
	bobWallet := createWallet(t, app, bobID, "USD")

	topUp(t, app, aliceID, aliceWallet, "50.00")

	// Malformed receiver number fails binding
	send(t, app, aliceID, aliceWallet, "not-a-wallet", "10.00", http.StatusBadRequest)

	// Sending from a wallet you do not own looks like not-found
	send(t, app, bobID, aliceWallet, bobWallet, "10.00", http.StatusNotFound)

	// Self-transfer is rejected
	send(t, app, aliceID, aliceWallet, aliceWallet, "10.00", http.StatusBadRequest)

	// Nothing above moved any money
	assert.Equal(t, "50.00", walletBalance(t, app, aliceID, aliceWallet))
	assert.Equal(t, "0.00", walletBalance(t, app, bobID, bobWallet))
}

func TestIntegration_TransferHistory(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceID := createUser(t, app, "Alice", "Smith", "alice@example.com")
	bobID := createUser(t, app, "Bob", "Jones", "bob@example.com")
	aliceWallet := createWallet(t, app, aliceID, "USD")
	bobWallet := createWallet(t, app, bobID, "USD")

	topUp(t, app, aliceID, aliceWallet, "1000.00")
	send(t, app, aliceID, aliceWallet, bobWallet, "10.00", http.StatusCreated)
	send(t, app, aliceID, aliceWallet, bobWallet, "20.00", http.StatusCreated)
	send(t, app, bobID, bobWallet, aliceWallet, "5.00", http.StatusCreated)

	// Default: both directions, newest first
	logs := queryLogs(t, app, aliceID, aliceWallet, nil, http.StatusOK)
	require.Len(t, logs, 3)
	assert.Equal(t, "5.00", logs[0]["money_sent"])

	// Outgoing only
	logs = queryLogs(t, app, aliceID, aliceWallet, url.Values{"operation_types": {"out"}}, http.StatusOK)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, aliceWallet, l["sender"])
	}

	// Incoming only
	logs = queryLogs(t, app, aliceID, aliceWallet, url.Values{"operation_types": {"in"}}, http.StatusOK)
	require.Len(t, logs, 1)
	assert.Equal(t, bobWallet, logs[0]["sender"])

	// Limit caps the newest-first result
	logs = queryLogs(t, app, aliceID, aliceWallet, url.Values{"limit": {"1"}}, http.StatusOK)
	require.Len(t, logs, 1)
	assert.Equal(t, "5.00", logs[0]["money_sent"])

	// Exclusive date window in the past matches nothing
	logs = queryLogs(t, app, aliceID, aliceWallet, url.Values{
		"date_from": {"2000-01-01 00:00:00"},
		"date_to":   {"2001-01-01 00:00:00"},
	}, http.StatusOK)
	assert.Empty(t, logs)

	// Unknown operation value and bad datetime are rejected
	queryLogs(t, app, aliceID, aliceWallet, url.Values{"operation_types": {"sideways"}}, http.StatusExpectationFailed)
	queryLogs(t, app, aliceID, aliceWallet, url.Values{"date_from": {"01/02/2003"}}, http.StatusExpectationFailed)

	// Reading another user's history looks like not-found
	queryLogs(t, app, bobID, aliceWallet, nil, http.StatusNotFound)
}

func TestIntegration_LogsSurviveWalletDeletion(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceID := createUser(t, app, "Alice", "Smith", "alice@example.com")
	bobID := createUser(t, app, "Bob", "Jones", "bob@example.com")
	aliceWallet := createWallet(t, app, aliceID, "USD")
	bobWallet := createWallet(t, app, bobID, "USD")

	topUp(t, app, aliceID, aliceWallet, "100.00")
	send(t, app, aliceID, aliceWallet, bobWallet, "40.00", http.StatusCreated)

	// Delete the sender; their side of the log must remain readable
	req, _ := http.NewRequest(http.MethodDelete, app.server.URL+"/api/v1/users/"+aliceID, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	logs := queryLogs(t, app, bobID, bobWallet, nil, http.StatusOK)
	require.Len(t, logs, 1)
	assert.Equal(t, aliceWallet, logs[0]["sender"])
	assert.Equal(t, "40.00", logs[0]["money_received"])
}

func TestIntegration_DateBoundaryExclusivity(t *testing.T) {
	// Bounds are exclusive on both ends: a record stamped exactly at
	// date_from or date_to must not appear.
	repo := newInMemoryTransferLogRepo()
	ctx := context.Background()

	atFrom := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	inside := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	atTo := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)

	for _, paidOn := range []time.Time{atFrom, inside, atTo} {
		err := repo.Create(ctx, &noopTx{}, &domain.TransferLog{
			TransferID:       uuid.New(),
			Sender:           "WLT1111111111USD",
			Receiver:         "WLT2222222222USD",
			CurrencySent:     "USD",
			CurrencyReceived: "USD",
			MoneySent:        decimal.RequireFromString("10.00"),
			MoneyReceived:    decimal.RequireFromString("10.00"),
			PaidOn:           paidOn,
		})
		require.NoError(t, err)
	}

	logs, err := repo.List(ctx, ports.TransferLogListParams{
		WalletNumber: "WLT1111111111USD",
		Operations:   []domain.OperationType{domain.OperationOut},
		DateFrom:     atFrom,
		DateTo:       atTo,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1, "only the record strictly inside the window should match")
	assert.True(t, logs[0].PaidOn.Equal(inside))

	// Nudging each bound outward by the smallest step admits the edge
	// records, confirming exclusion was exact equality and nothing else.
	logs, err = repo.List(ctx, ports.TransferLogListParams{
		WalletNumber: "WLT1111111111USD",
		Operations:   []domain.OperationType{domain.OperationOut},
		DateFrom:     atFrom.Add(-time.Nanosecond),
		DateTo:       atTo.Add(time.Nanosecond),
	})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

// --- Helpers ---

func createUser(t *testing.T, app *testApp, name, surname, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"name":    name,
		"surname": surname,
		"email":   email,
	})
	resp, err := http.Post(app.server.URL+"/api/v1/users", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := decodeData(t, resp)
	return data["id"].(string)
}

func createWallet(t *testing.T, app *testApp, userID, currency string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"currency": currency})
	resp, err := http.Post(app.server.URL+"/api/v1/users/"+userID+"/wallets", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := decodeData(t, resp)
	return data["number"].(string)
}

func topUp(t *testing.T, app *testApp, userID, number, amount string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"amount": amount})
	resp, err := http.Post(app.server.URL+"/api/v1/users/"+userID+"/wallets/"+number+"/top-up", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	return data["balance"].(string)
}

// send posts a transfer and returns the decoded log record on success,
// nil otherwise.
func send(t *testing.T, app *testApp, userID, sender, receiver, amount string, wantStatus int) map[string]interface{} {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"receiver": receiver,
		"amount":   amount,
	})
	resp, err := http.Post(app.server.URL+"/api/v1/users/"+userID+"/wallets/"+sender+"/send", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	require.Equal(t, wantStatus, resp.StatusCode, "send response: %s", string(raw))
	if wantStatus != http.StatusCreated {
		return nil
	}

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope["data"].(map[string]interface{})
}

func queryLogs(t *testing.T, app *testApp, userID, number string, params url.Values, wantStatus int) []map[string]interface{} {
	t.Helper()
	u := app.server.URL + "/api/v1/users/" + userID + "/wallets/" + number + "/logs"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	require.Equal(t, wantStatus, resp.StatusCode, "logs response: %s", string(raw))
	if wantStatus != http.StatusOK {
		return nil
	}

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.Data
}

func walletBalance(t *testing.T, app *testApp, userID, number string) string {
	t.Helper()
	resp, err := http.Get(app.server.URL + "/api/v1/users/" + userID + "/wallets")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeData(t, resp)
	wallets := data["wallets"].(map[string]interface{})
	balance, ok := wallets[number].(string)
	require.True(t, ok, "wallet %s not found in balances", number)
	return balance
}

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object")
	return data
}
