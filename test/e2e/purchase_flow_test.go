package e2e

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/marketplace/internal/auth"
	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/handlers"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/processor"
	"github.com/nimasrn/marketplace/internal/queue"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/internal/services"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
	"github.com/nimasrn/marketplace/pkg/pg"
	"github.com/nimasrn/marketplace/pkg/redis"
	"github.com/nimasrn/marketplace/test/fixtures"
	"github.com/nimasrn/marketplace/test/helpers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// recordingDeliverer stands in for the webhook receivers.
type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []events.Event
}

func (r *recordingDeliverer) Deliver(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, ev)
	return nil
}

func (r *recordingDeliverer) events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.delivered...)
}

type TestEnvironment struct {
	DB        *pg.DB
	Redis     *miniredis.Miniredis
	Adapter   redis.RedisAdapter
	Queue     *queue.Queue
	Processor *processor.Service
	Deliverer *recordingDeliverer
	Client    *fasthttp.Client

	listener *fasthttputil.InmemoryListener
}

func queueConfig(consumer string) queue.QueueConfig {
	return queue.QueueConfig{
		Name:              "events",
		ConsumerGroup:     "notifier",
		ConsumerName:      consumer,
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      20 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	}
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	db := helpers.SetupTestDB(t)
	mr, adapter := helpers.SetupTestRedis(t)

	publishQ, err := queue.NewQueue(adapter, queueConfig("api"))
	require.NoError(t, err)
	emitter := events.NewEmitter(events.NewQueuePublisher(publishQ))

	purchases := services.NewPurchaseService(db,
		repository.NewUserRepository(db),
		repository.NewProductRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewPurchaseRepository(db),
		emitter,
	)

	router := xhttp.CreateDefaultRouter()
	g := router.Group("/api")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(db))
	handlers.RegisterPurchaseRoutes(g, handlers.NewPurchaseHandler(purchases), handlers.NewGuard(auth.HeaderAuthenticator{}))

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, router.Handler) }()
	client := &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}

	deliverer := &recordingDeliverer{}
	idem := processor.NewIdempotencyService(adapter, processor.DefaultIdempotencyConfig())
	svc := processor.NewService(processor.NewNotificationHandler(deliverer, idem), 2)
	svc.Start()

	consumeQ, err := queue.NewQueue(adapter, queueConfig("processor"))
	require.NoError(t, err)
	require.NoError(t, svc.ConsumeQueue(consumeQ))

	env := &TestEnvironment{
		DB:        db,
		Redis:     mr,
		Adapter:   adapter,
		Queue:     publishQ,
		Processor: svc,
		Deliverer: deliverer,
		Client:    client,
		listener:  ln,
	}
	t.Cleanup(env.Cleanup)
	return env
}

func (env *TestEnvironment) Cleanup() {
	// stop consumers before redis goes away
	env.Processor.Stop()
	_ = env.listener.Close()
}

// post sends body as callerID; zero sends no identity.
func (env *TestEnvironment) post(t *testing.T, path string, callerID int64, body []byte, idempotencyKey string) (int, []byte) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://marketplace.test" + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if idempotencyKey != "" {
		req.Header.Set(handlers.HeaderIdempotencyKey, idempotencyKey)
	}
	if callerID != 0 {
		req.Header.Set(auth.HeaderUserID, strconv.FormatInt(callerID, 10))
	}
	req.SetBody(body)

	require.NoError(t, env.Client.DoTimeout(req, resp, 5*time.Second))
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

func assertBalance(t *testing.T, env *TestEnvironment, userID int64, want string) {
	t.Helper()
	got := helpers.GetBalance(t, env.DB, userID)
	assert.True(t, decimal.RequireFromString(want).Equal(got), "balance %s, want %s", got, want)
}

func TestE2E_Health(t *testing.T) {
	env := setupE2EEnvironment(t)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI("http://marketplace.test/api/health")

	require.NoError(t, env.Client.DoTimeout(req, resp, 5*time.Second))
	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode())
}

func TestE2E_PurchaseDebitsAndNotifies(t *testing.T) {
	env := setupE2EEnvironment(t)

	buyer := helpers.CreateTestUser(t, env.DB, model.UserStatusApproved, fixtures.TestBuyerBalance)
	maker := helpers.CreateTestManufacturer(t, env.DB)
	brick := helpers.CreateTestProduct(t, env.DB, maker.ID, "Red brick", fixtures.BrickPrice, 10)

	status, body := env.post(t, "/api/purchases", buyer.ID, fixtures.PurchaseBody(buyer.ID, fixtures.Item(brick.ID, 3)), "e2e-order-1")
	require.Equal(t, fasthttp.StatusCreated, status, string(body))

	var res model.PurchaseResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, fixtures.Total(fixtures.BrickPrice, 3).Equal(res.TotalAmount))
	assert.True(t, res.BalanceAfter.Equal(helpers.GetBalance(t, env.DB, buyer.ID)))
	assertBalance(t, env, buyer.ID, "62.5")
	assert.Equal(t, 7, helpers.GetStock(t, env.DB, brick.ID))

	helpers.WaitFor(t, 3*time.Second, func() bool { return len(env.Deliverer.events()) == 1 })
	ev := env.Deliverer.events()[0]
	assert.Equal(t, events.PurchaseCompleted, ev.Type)
	assert.Equal(t, buyer.ID, ev.UserID)

	var payload services.PurchaseCompleted
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, res.TransactionID, payload.TransactionID)

	// a replay answers from the ledger without charging or notifying again
	status, body = env.post(t, "/api/purchases", buyer.ID, fixtures.PurchaseBody(buyer.ID, fixtures.Item(brick.ID, 3)), "e2e-order-1")
	require.Equal(t, fasthttp.StatusOK, status, string(body))
	assertBalance(t, env, buyer.ID, "62.5")
	assert.Equal(t, 7, helpers.GetStock(t, env.DB, brick.ID))

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, env.Deliverer.events(), 1)
}

func TestE2E_PurchaseRequiresAccountOwner(t *testing.T) {
	env := setupE2EEnvironment(t)

	buyer := helpers.CreateTestUser(t, env.DB, model.UserStatusApproved, fixtures.TestBuyerBalance)
	stranger := helpers.CreateTestUser(t, env.DB, model.UserStatusApproved, "0")
	maker := helpers.CreateTestManufacturer(t, env.DB)
	brick := helpers.CreateTestProduct(t, env.DB, maker.ID, "Red brick", fixtures.BrickPrice, 10)
	body := fixtures.PurchaseBody(buyer.ID, fixtures.Item(brick.ID, 1))

	status, _ := env.post(t, "/api/purchases", 0, body, "")
	assert.Equal(t, fasthttp.StatusUnauthorized, status)

	status, _ = env.post(t, "/api/transactions", stranger.ID, body, "")
	assert.Equal(t, fasthttp.StatusForbidden, status)

	assertBalance(t, env, buyer.ID, fixtures.TestBuyerBalance)
	assert.Equal(t, 10, helpers.GetStock(t, env.DB, brick.ID))
}

func TestE2E_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	env := setupE2EEnvironment(t)
	ctx := context.Background()

	buyer := helpers.CreateTestUser(t, env.DB, model.UserStatusApproved, "20.00")
	maker := helpers.CreateTestManufacturer(t, env.DB)
	cement := helpers.CreateTestProduct(t, env.DB, maker.ID, "Cement bag", fixtures.CementPrice, 4)

	status, body := env.post(t, "/api/purchases", buyer.ID, fixtures.PurchaseBody(buyer.ID, fixtures.Item(cement.ID, 1)), "")
	assert.Equal(t, fasthttp.StatusBadRequest, status, string(body))

	assertBalance(t, env, buyer.ID, "20")
	assert.Equal(t, 4, helpers.GetStock(t, env.DB, cement.ID))

	txns, total, err := repository.NewTransactionRepository(env.DB).List(ctx, model.TransactionFilter{UserID: &buyer.ID})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, txns)

	stats, err := env.Queue.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalMessages)
}

func TestE2E_OutOfStockAcrossItems(t *testing.T) {
	env := setupE2EEnvironment(t)

	buyer := helpers.CreateTestUser(t, env.DB, model.UserStatusApproved, "1000.00")
	maker := helpers.CreateTestManufacturer(t, env.DB)
	brick := helpers.CreateTestProduct(t, env.DB, maker.ID, "Red brick", fixtures.BrickPrice, 10)
	cement := helpers.CreateTestProduct(t, env.DB, maker.ID, "Cement bag", fixtures.CementPrice, 1)

	body := fixtures.PurchaseBody(buyer.ID, fixtures.Item(brick.ID, 2), fixtures.Item(cement.ID, 2))
	status, resp := env.post(t, "/api/purchases", buyer.ID, body, "")
	assert.Equal(t, fasthttp.StatusBadRequest, status, string(resp))

	// the brick line must not be committed on its own
	assert.Equal(t, 10, helpers.GetStock(t, env.DB, brick.ID))
	assert.Equal(t, 1, helpers.GetStock(t, env.DB, cement.ID))
	assertBalance(t, env, buyer.ID, "1000")
}
