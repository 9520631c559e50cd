package usecase

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/clock"
	"github.com/shandysiswandi/assetly/internal/pkg/config"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
	"github.com/shandysiswandi/assetly/internal/pkg/goroutine"
	"github.com/shandysiswandi/assetly/internal/pkg/hash"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

var (
	t0       = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	errStore = errors.New("store unavailable")
)

// fakeDB is an in-memory store. Atomic serializes per account and restores
// the previous rows when fn fails, like a rolled back transaction.
type fakeDB struct {
	mu       sync.Mutex
	accounts map[string]entity.Account
	records  map[int64]entity.OTP
	password map[int64]string

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	errGetAccount error
	errSave       error
	errDelete     error
}

func newFakeDB(accounts ...entity.Account) *fakeDB {
	db := &fakeDB{
		accounts: map[string]entity.Account{},
		records:  map[int64]entity.OTP{},
		password: map[int64]string{},
		locks:    map[int64]*sync.Mutex{},
	}
	for _, a := range accounts {
		db.accounts[a.Email] = a
	}
	return db
}

func (f *fakeDB) Atomic(ctx context.Context, accountID int64, fn func(ctx context.Context) error) error {
	f.locksMu.Lock()
	l, ok := f.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		f.locks[accountID] = l
	}
	f.locksMu.Unlock()

	l.Lock()
	defer l.Unlock()

	f.mu.Lock()
	snapshot := make(map[int64]entity.OTP, len(f.records))
	for k, v := range f.records {
		snapshot[k] = v
	}
	pwSnapshot := make(map[int64]string, len(f.password))
	for k, v := range f.password {
		pwSnapshot[k] = v
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.records = snapshot
		f.password = pwSnapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeDB) GetAccountByEmail(_ context.Context, email string) (*entity.Account, error) {
	if f.errGetAccount != nil {
		return nil, f.errGetAccount
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &a, nil
}

func (f *fakeDB) UpdateAccountPassword(_ context.Context, accountID int64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password[accountID] = passwordHash
	return nil
}

func (f *fakeDB) CountOTPCreatedSince(_ context.Context, accountID int64, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.records {
		if r.AccountID == accountID && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) latest(accountID int64, used bool) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.OTP
	for _, r := range f.records {
		if r.AccountID == accountID && r.Used == used {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, goerror.ErrNotFound
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	r := out[0]
	return &r, nil
}

func (f *fakeDB) GetLatestUnusedOTP(_ context.Context, accountID int64) (*entity.OTP, error) {
	return f.latest(accountID, false)
}

func (f *fakeDB) GetLatestUsedOTP(_ context.Context, accountID int64) (*entity.OTP, error) {
	return f.latest(accountID, true)
}

func (f *fakeDB) SaveOTP(_ context.Context, o *entity.OTP) error {
	if f.errSave != nil {
		return f.errSave
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.records[o.ID]; ok && prev.Used {
		return goerror.ErrConflict
	}
	f.records[o.ID] = *o
	return nil
}

func (f *fakeDB) DeleteExpiredOTP(_ context.Context, cutoff time.Time) (int64, error) {
	if f.errDelete != nil {
		return 0, f.errDelete
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, r := range f.records {
		if !r.Used && r.ExpiresAt.Before(cutoff) {
			delete(f.records, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) FindUnusedExpiredOTP(_ context.Context, cutoff time.Time, limit int) ([]entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.OTP
	for _, r := range f.records {
		if !r.Used && r.ExpiresAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDB) DeleteUsedOTP(_ context.Context, accountID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, r := range f.records {
		if r.AccountID == accountID && r.Used {
			delete(f.records, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) all() []entity.OTP {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.OTP, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []OTPMail
	err  error
	// stall makes SendOTP wait for its context, like an unresponsive relay.
	stall bool
}

func (f *fakeEmail) SendOTP(ctx context.Context, msg OTPMail) error {
	if f.stall {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeEmail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeMQ struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (f *fakeMQ) PublishAudit(_ context.Context, ev entity.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeMQ) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

// seqGenerator hands out codes in order and repeats the last one.
type seqGenerator struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (g *seqGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	c := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return c, nil
}

type seqID struct{ n atomic.Int64 }

func (s *seqID) Generate() int64 { return s.n.Add(1) }

type fixture struct {
	uc    *Usecase
	db    *fakeDB
	email *fakeEmail
	mq    *fakeMQ
	gen   *seqGenerator
	clock *clock.Manual
	gm    *goroutine.Manager
}

var testAccount = entity.Account{ID: 7, Email: "a@x.com", FullName: "Alice", Status: entity.AccountStatusActive}

func newFixture(t *testing.T, yaml string, codes ...string) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml), nil)
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	if len(codes) == 0 {
		codes = []string{"482913"}
	}

	f := &fixture{
		db:    newFakeDB(testAccount),
		email: &fakeEmail{},
		mq:    &fakeMQ{},
		gen:   &seqGenerator{codes: codes},
		clock: clock.NewManual(t0),
		gm:    goroutine.NewManager(16),
	}

	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoEmail:     f.email,
		RepoMessaging: f.mq,
		Validator:     v,
		Config:        cfg,
		OTPHash:       hash.NewHMACSHA256("test-secret"),
		PasswordHash:  hash.NewBcrypt(4, ""),
		Generator:     f.gen,
		UID:           &seqID{},
		Clock:         f.clock,
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.gm,
	})

	return f
}

// drain waits for background audit publishing.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, f.gm.Wait())
}

func requireGoerrorCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected goerror, got %v", err)
	require.Equal(t, code, gerr.Code())
}

func containsAll(haystack []string, needles ...string) bool {
	for _, n := range needles {
		if !slices.Contains(haystack, n) {
			return false
		}
	}
	return true
}
