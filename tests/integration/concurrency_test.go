package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentTopUps fires 100 concurrent top-ups against one wallet.
// Every credit must land: the final balance is exactly the sum of all
// top-up amounts, with no lost updates.
func TestConcurrentTopUps(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userID := createUser(t, app, "Alice", "Smith", "alice@example.com")
	number := createWallet(t, app, userID, "USD")

	concurrency := 100

	var wg sync.WaitGroup
	var successCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body := `{"amount":"10.00"}`
			resp, err := http.Post(app.server.URL+"/api/v1/users/"+userID+"/wallets/"+number+"/top-up",
				"application/json", bytes.NewBufferString(body))
			if err != nil {
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	require.Equal(t, int64(concurrency), successCount.Load(), "all top-ups should succeed")
	assert.Equal(t, "1000.00", walletBalance(t, app, userID, number))
}

// TestConcurrentTransfers runs 50 concurrent transfers over the same
// wallet pair, all fully covered by the sender's balance. All must
// succeed and every moved unit must be accounted for on both sides.
func TestConcurrentTransfers(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceID := createUser(t, app, "Alice", "Smith", "alice@example.com")
	bobID := createUser(t, app, "Bob", "Jones", "bob@example.com")
	aliceWallet := createWallet(t, app, aliceID, "USD")
	bobWallet := createWallet(t, app, bobID, "USD")

	topUp(t, app, aliceID, aliceWallet, "1000.00")

	concurrency := 50

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var failCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body := fmt.Sprintf(`{"receiver":"%s","amount":"10.00"}`, bobWallet)
			resp, err := http.Post(app.server.URL+"/api/v1/users/"+aliceID+"/wallets/"+aliceWallet+"/send",
				"application/json", bytes.NewBufferString(body))
			if err != nil {
				failCount.Add(1)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusCreated {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()

	t.Logf("Concurrent transfers: %d succeeded, %d failed (out of %d)", successCount.Load(), failCount.Load(), concurrency)

	require.Equal(t, int64(concurrency), successCount.Load(), "fully funded transfers should all succeed")
	assert.Equal(t, "500.00", walletBalance(t, app, aliceID, aliceWallet))
	assert.Equal(t, "500.00", walletBalance(t, app, bobID, bobWallet))

	// One immutable log record per completed transfer
	logs := queryLogs(t, app, aliceID, aliceWallet, nil, http.StatusOK)
	assert.Len(t, logs, concurrency)
}

// TestConcurrentTransfers_Overspend fires 10 concurrent transfers whose
// total exceeds the sender's balance. With real PostgreSQL and
// SELECT FOR UPDATE, exactly 3 of the 30.00 transfers would succeed
// against a 100.00 balance. The in-memory repos have no row-level
// locks, so the funds check can race; the invariant that must hold
// regardless is conservation: money only moves, it is never created
// or destroyed.
func TestConcurrentTransfers_Overspend(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceID := createUser(t, app, "Alice", "Smith", "alice@example.com")
	bobID := createUser(t, app, "Bob", "Jones", "bob@example.com")
	aliceWallet := createWallet(t, app, aliceID, "USD")
	bobWallet := createWallet(t, app, bobID, "USD")

	topUp(t, app, aliceID, aliceWallet, "100.00")

	concurrency := 10

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var failCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body := fmt.Sprintf(`{"receiver":"%s","amount":"30.00"}`, bobWallet)
			resp, err := http.Post(app.server.URL+"/api/v1/users/"+aliceID+"/wallets/"+aliceWallet+"/send",
				"application/json", bytes.NewBufferString(body))
			if err != nil {
				failCount.Add(1)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusCreated {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()

	t.Logf("Overspend test: %d succeeded, %d failed (out of %d)", successCount.Load(), failCount.Load(), concurrency)

	totalProcessed := successCount.Load() + failCount.Load()
	require.Equal(t, int64(concurrency), totalProcessed, "all requests should complete")

	aliceBalance, err := decimal.NewFromString(walletBalance(t, app, aliceID, aliceWallet))
	require.NoError(t, err)
	bobBalance, err := decimal.NewFromString(walletBalance(t, app, bobID, bobWallet))
	require.NoError(t, err)

	t.Logf("Final balances: sender %s, receiver %s", aliceBalance, bobBalance)

	// Receiver gets exactly 30.00 per successful transfer, and the two
	// balances always sum to the initial 100.00.
	expectedReceived := decimal.RequireFromString("30.00").Mul(decimal.NewFromInt(successCount.Load()))
	assert.True(t, bobBalance.Equal(expectedReceived),
		"receiver balance %s should equal %s", bobBalance, expectedReceived)
	assert.True(t, aliceBalance.Add(bobBalance).Equal(decimal.RequireFromString("100.00")),
		"total money must be conserved")
}
