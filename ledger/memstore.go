package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gearpool/models"
)

// MemStore is an in-memory Store. One mutex serializes every atomic unit,
// which is coarser than the per-row locking of the SQL implementation but
// satisfies the same contract; a failed unit is rolled back from a snapshot.
// It backs the test suites and doubles as the user directory for them.
type MemStore struct {
	mu sync.Mutex
	st memState
}

func NewMemStore() *MemStore {
	return &MemStore{st: newMemState()}
}

type memState struct {
	gear    map[string]models.Gear
	rentals map[string]models.Rental
	users   map[int64]models.User
	events  map[string][]models.ReturnEvent
}

func newMemState() memState {
	return memState{
		gear:    map[string]models.Gear{},
		rentals: map[string]models.Rental{},
		users:   map[int64]models.User{},
		events:  map[string][]models.ReturnEvent{},
	}
}

func (st memState) clone() memState {
	c := newMemState()
	for k, v := range st.gear {
		c.gear[k] = v
	}
	for k, v := range st.rentals {
		c.rentals[k] = v
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.events {
		c.events[k] = v
	}
	return c
}

func (m *MemStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.st.clone()
	if err := fn(&memTx{st: &m.st}); err != nil {
		m.st = snap
		return err
	}
	return nil
}

// AddUser 测试用：直接放入一个用户
func (m *MemStore) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.users[u.TelegramID] = u
}

func (m *MemStore) tx(fn func(tx *memTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{st: &m.st})
}

func (m *MemStore) GetGear(ctx context.Context, id string) (g *models.Gear, err error) {
	err = m.tx(func(tx *memTx) error { g, err = tx.GetGear(ctx, id); return err })
	return
}

func (m *MemStore) GetGearForUpdate(ctx context.Context, id string) (*models.Gear, error) {
	return m.GetGear(ctx, id)
}

func (m *MemStore) GearNameTaken(ctx context.Context, name, excludeID string) (taken bool, err error) {
	err = m.tx(func(tx *memTx) error { taken, err = tx.GearNameTaken(ctx, name, excludeID); return err })
	return
}

func (m *MemStore) CreateGear(ctx context.Context, g *models.Gear) error {
	return m.tx(func(tx *memTx) error { return tx.CreateGear(ctx, g) })
}

func (m *MemStore) UpdateGear(ctx context.Context, id string, fields map[string]any) error {
	return m.tx(func(tx *memTx) error { return tx.UpdateGear(ctx, id, fields) })
}

func (m *MemStore) SearchGear(ctx context.Context, q string) (out []models.Gear, err error) {
	err = m.tx(func(tx *memTx) error { out, err = tx.SearchGear(ctx, q); return err })
	return
}

func (m *MemStore) AdjustAvailable(ctx context.Context, gearID string, delta int) error {
	return m.tx(func(tx *memTx) error { return tx.AdjustAvailable(ctx, gearID, delta) })
}

func (m *MemStore) OpenQuantity(ctx context.Context, gearID string) (n int, err error) {
	err = m.tx(func(tx *memTx) error { n, err = tx.OpenQuantity(ctx, gearID); return err })
	return
}

func (m *MemStore) GetRental(ctx context.Context, id string) (rec *models.Rental, err error) {
	err = m.tx(func(tx *memTx) error { rec, err = tx.GetRental(ctx, id); return err })
	return
}

func (m *MemStore) GetRentalForUpdate(ctx context.Context, id string) (*models.Rental, error) {
	return m.GetRental(ctx, id)
}

func (m *MemStore) CreateRental(ctx context.Context, rec *models.Rental) error {
	return m.tx(func(tx *memTx) error { return tx.CreateRental(ctx, rec) })
}

func (m *MemStore) UpdateRental(ctx context.Context, id string, fields map[string]any) error {
	return m.tx(func(tx *memTx) error { return tx.UpdateRental(ctx, id, fields) })
}

func (m *MemStore) ListOpenRentals(ctx context.Context, borrowerID *int64) (out []RentalDetail, err error) {
	err = m.tx(func(tx *memTx) error { out, err = tx.ListOpenRentals(ctx, borrowerID); return err })
	return
}

func (m *MemStore) AppendReturnEvent(ctx context.Context, ev *models.ReturnEvent) error {
	return m.tx(func(tx *memTx) error { return tx.AppendReturnEvent(ctx, ev) })
}

func (m *MemStore) ListReturnEvents(ctx context.Context, rentalID string) (out []models.ReturnEvent, err error) {
	err = m.tx(func(tx *memTx) error { out, err = tx.ListReturnEvents(ctx, rentalID); return err })
	return
}

func (m *MemStore) UserExists(ctx context.Context, telegramID int64) (ok bool, err error) {
	err = m.tx(func(tx *memTx) error { ok, err = tx.UserExists(ctx, telegramID); return err })
	return
}

// 用户目录（controllers.UserDirectory），测试里顶替 db.Repo

func (m *MemStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.st.users[u.TelegramID]; ok {
		return conflict("user")
	}
	m.st.users[u.TelegramID] = *u
	return nil
}

func (m *MemStore) FindUser(ctx context.Context, telegramID int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.st.users[telegramID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemStore) UpdateUser(ctx context.Context, telegramID int64, fields map[string]any) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.st.users[telegramID]
	if !ok {
		return nil, nil
	}
	for k, v := range fields {
		switch k {
		case "full_name":
			u.FullName = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "document":
			if v == nil {
				u.Document = nil
			} else {
				d := v.(string)
				u.Document = &d
			}
		case "is_manager":
			u.IsManager = v.(bool)
		}
	}
	m.st.users[telegramID] = u
	return &u, nil
}

// memTx is the view handed to an atomic unit: same state, no re-locking.
type memTx struct {
	st *memState
}

// 嵌套的原子单元并入外层
func (t *memTx) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *memTx) GetGear(ctx context.Context, id string) (*models.Gear, error) {
	g, ok := t.st.gear[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (t *memTx) GetGearForUpdate(ctx context.Context, id string) (*models.Gear, error) {
	return t.GetGear(ctx, id)
}

func (t *memTx) GearNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	for _, g := range t.st.gear {
		if g.ID != excludeID && strings.EqualFold(g.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateGear(ctx context.Context, g *models.Gear) error {
	t.st.gear[g.ID] = *g
	return nil
}

func (t *memTx) UpdateGear(ctx context.Context, id string, fields map[string]any) error {
	g, ok := t.st.gear[id]
	if !ok {
		return notFound("gear")
	}
	for k, v := range fields {
		switch k {
		case "name":
			g.Name = v.(string)
		case "total_quantity":
			g.TotalQuantity = v.(int)
		case "available_count":
			g.AvailableCount = v.(int)
		case "description":
			g.Description = v.(string)
		}
	}
	g.UpdatedAt = time.Now().UTC()
	t.st.gear[id] = g
	return nil
}

func (t *memTx) SearchGear(ctx context.Context, q string) ([]models.Gear, error) {
	q = strings.ToLower(q)
	out := []models.Gear{}
	for _, g := range t.st.gear {
		if strings.Contains(strings.ToLower(g.Name), q) ||
			strings.Contains(strings.ToLower(g.Description), q) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (t *memTx) AdjustAvailable(ctx context.Context, gearID string, delta int) error {
	g, ok := t.st.gear[gearID]
	if !ok {
		return notFound("gear")
	}
	next := g.AvailableCount + delta
	if next < 0 || next > g.TotalQuantity {
		return conflict("available count out of range")
	}
	g.AvailableCount = next
	g.UpdatedAt = time.Now().UTC()
	t.st.gear[gearID] = g
	return nil
}

func (t *memTx) OpenQuantity(ctx context.Context, gearID string) (int, error) {
	n := 0
	for _, rec := range t.st.rentals {
		if rec.GearID == gearID && rec.ReturnedAt == nil {
			n += rec.Quantity
		}
	}
	return n, nil
}

func (t *memTx) GetRental(ctx context.Context, id string) (*models.Rental, error) {
	rec, ok := t.st.rentals[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (t *memTx) GetRentalForUpdate(ctx context.Context, id string) (*models.Rental, error) {
	return t.GetRental(ctx, id)
}

func (t *memTx) CreateRental(ctx context.Context, rec *models.Rental) error {
	t.st.rentals[rec.ID] = *rec
	return nil
}

func (t *memTx) UpdateRental(ctx context.Context, id string, fields map[string]any) error {
	rec, ok := t.st.rentals[id]
	if !ok {
		return notFound("loan")
	}
	for k, v := range fields {
		switch k {
		case "returned_at":
			at := v.(time.Time)
			rec.ReturnedAt = &at
		case "acceptor_id":
			acc := v.(int64)
			rec.AcceptorID = &acc
		case "quantity":
			rec.Quantity = v.(int)
		case "due_at":
			rec.DueAt = v.(time.Time)
		case "event":
			rec.Event = v.(string)
		case "note":
			rec.Note = v.(string)
		}
	}
	rec.UpdatedAt = time.Now().UTC()
	t.st.rentals[id] = rec
	return nil
}

func (t *memTx) ListOpenRentals(ctx context.Context, borrowerID *int64) ([]RentalDetail, error) {
	out := []RentalDetail{}
	for _, rec := range t.st.rentals {
		if rec.ReturnedAt != nil {
			continue
		}
		if borrowerID != nil && rec.BorrowerID != *borrowerID {
			continue
		}
		d := RentalDetail{Rental: rec}
		if g, ok := t.st.gear[rec.GearID]; ok {
			d.GearName = g.Name
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

func (t *memTx) AppendReturnEvent(ctx context.Context, ev *models.ReturnEvent) error {
	t.st.events[ev.RentalID] = append(t.st.events[ev.RentalID], *ev)
	return nil
}

func (t *memTx) ListReturnEvents(ctx context.Context, rentalID string) ([]models.ReturnEvent, error) {
	evs := t.st.events[rentalID]
	out := make([]models.ReturnEvent, len(evs))
	copy(out, evs)
	return out, nil
}

func (t *memTx) UserExists(ctx context.Context, telegramID int64) (bool, error) {
	_, ok := t.st.users[telegramID]
	return ok, nil
}

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*memTx)(nil)
)
