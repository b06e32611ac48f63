package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"mobility-rental-backend/internal/domain"
	"mobility-rental-backend/internal/repository"
)

// memStore is a transactional in-memory store: WithinTx works on a copy that
// replaces the committed state only when fn succeeds.
type memStore struct {
	mu   sync.Mutex
	data *memData
	// fail makes the named operation return the error once.
	fail map[string]error
}

type memData struct {
	devices      map[string]domain.Device
	reservations map[string]domain.Reservation
	rentals      map[string]domain.Rental
}

func newMemStore() *memStore {
	return &memStore{
		data: &memData{
			devices:      map[string]domain.Device{},
			reservations: map[string]domain.Reservation{},
			rentals:      map[string]domain.Rental{},
		},
		fail: map[string]error{},
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		devices:      make(map[string]domain.Device, len(d.devices)),
		reservations: make(map[string]domain.Reservation, len(d.reservations)),
		rentals:      make(map[string]domain.Rental, len(d.rentals)),
	}
	for k, v := range d.devices {
		c.devices[k] = v
	}
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	for k, v := range d.rentals {
		c.rentals[k] = v
	}
	return c
}

func (s *memStore) injected(op string) error {
	if err, ok := s.fail[op]; ok {
		delete(s.fail, op)
		return err
	}
	return nil
}

type memRepos struct {
	s *memStore
	d *memData
}

func (r *memRepos) Devices() repository.DeviceRepository           { return &memDevices{r} }
func (r *memRepos) Reservations() repository.ReservationRepository { return &memReservations{r} }
func (r *memRepos) Rentals() repository.RentalRepository           { return &memRentals{r} }

func (s *memStore) Devices() repository.DeviceRepository { return (&memRepos{s, s.data}).Devices() }
func (s *memStore) Reservations() repository.ReservationRepository {
	return (&memRepos{s, s.data}).Reservations()
}
func (s *memStore) Rentals() repository.RentalRepository { return (&memRepos{s, s.data}).Rentals() }
func (s *memStore) Ping(ctx context.Context) error       { return nil }

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.data.clone()
	if err := fn(ctx, &memRepos{s, tx}); err != nil {
		return err
	}
	s.data = tx
	return nil
}

// seed helpers write committed state directly.
func (s *memStore) seedDevices(devices ...domain.Device) {
	for _, d := range devices {
		s.data.devices[d.ID] = d
	}
}

func (s *memStore) device(id string) domain.Device        { return s.data.devices[id] }
func (s *memStore) reservation(id string) domain.Reservation { return s.data.reservations[id] }
func (s *memStore) rental(id string) domain.Rental          { return s.data.rentals[id] }

type memDevices struct{ *memRepos }

func (r *memDevices) ListAll(ctx context.Context) ([]domain.Device, error) {
	out := []domain.Device{}
	for _, d := range r.d.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memDevices) ListAvailableIDs(ctx context.Context, deviceType domain.DeviceType, location domain.Location) ([]string, error) {
	ids := []string{}
	for _, d := range r.d.devices {
		if d.Type == deviceType && d.Location == location && d.Status == domain.DeviceStatusAvailable {
			ids = append(ids, d.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memDevices) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	d, ok := r.d.devices[id]
	if !ok {
		return nil, domain.NewNotFoundError("device", id)
	}
	return &d, nil
}

func (r *memDevices) Insert(ctx context.Context, devices []domain.Device) error {
	if err := r.s.injected("devices.Insert"); err != nil {
		return err
	}
	for _, d := range devices {
		if _, ok := r.d.devices[d.ID]; ok {
			return domain.NewConflictError("devices_pkey - Key (id)=(%s) already exists.", d.ID)
		}
		r.d.devices[d.ID] = d
	}
	return nil
}

func (r *memDevices) Upsert(ctx context.Context, devices []domain.Device) error {
	for _, d := range devices {
		r.d.devices[d.ID] = d
	}
	return nil
}

func (r *memDevices) DeleteAll(ctx context.Context) error {
	r.d.devices = map[string]domain.Device{}
	return nil
}

func (r *memDevices) UpdateLocations(ctx context.Context, ids []string, location domain.Location) ([]string, error) {
	updated := []string{}
	for _, id := range ids {
		if d, ok := r.d.devices[id]; ok {
			d.Location = location
			r.d.devices[id] = d
			updated = append(updated, id)
		}
	}
	return updated, nil
}

func (r *memDevices) UpdateStatusIf(ctx context.Context, id string, expected, next domain.DeviceStatus, location *domain.Location) (int64, error) {
	if err := r.s.injected("devices.UpdateStatusIf"); err != nil {
		return 0, err
	}
	d, ok := r.d.devices[id]
	if !ok || d.Status != expected {
		return 0, nil
	}
	d.Status = next
	if location != nil {
		d.Location = *location
	}
	r.d.devices[id] = d
	return 1, nil
}

func (r *memDevices) UpdateStatus(ctx context.Context, id string, next domain.DeviceStatus, location *domain.Location) error {
	if err := r.s.injected("devices.UpdateStatus"); err != nil {
		return err
	}
	d, ok := r.d.devices[id]
	if !ok {
		return domain.NewNotFoundError("device", id)
	}
	d.Status = next
	if location != nil {
		d.Location = *location
	}
	r.d.devices[id] = d
	return nil
}

func nextSeq(ids []string, prefix string) int {
	max := 0
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			n, _ := strconv.Atoi(id[len(id)-3:])
			if n > max {
				max = n
			}
		}
	}
	return max + 1
}

type memReservations struct{ *memRepos }

func (r *memReservations) NextSequence(ctx context.Context, prefix string) (int, error) {
	ids := make([]string, 0, len(r.d.reservations))
	for id := range r.d.reservations {
		ids = append(ids, id)
	}
	return nextSeq(ids, prefix), nil
}

func (r *memReservations) Create(ctx context.Context, res *domain.Reservation) error {
	if _, ok := r.d.reservations[res.ID]; ok {
		return domain.NewConflictError("reservations_pkey - Key (id)=(%s) already exists.", res.ID)
	}
	r.d.reservations[res.ID] = *res
	return nil
}

func (r *memReservations) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	res, ok := r.d.reservations[id]
	if !ok {
		return nil, domain.NewNotFoundError("reservation", id)
	}
	return &res, nil
}

func (r *memReservations) GetForUpdate(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *memReservations) ListByDate(ctx context.Context, f domain.ReservationFilter) ([]domain.Reservation, error) {
	out := []domain.Reservation{}
	for _, res := range r.d.reservations {
		if res.Date != f.Date || (f.DeviceType != nil && res.DeviceType != *f.DeviceType) {
			continue
		}
		if f.ExcludePickedUp && (res.Status == domain.ReservationStatusPickedUp || res.Status == domain.ReservationStatusCompleted) {
			continue
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PickupTime.Equal(out[j].PickupTime) {
			return out[i].PickupTime.Before(out[j].PickupTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memReservations) CountByDate(ctx context.Context, date string, deviceType domain.DeviceType, location domain.Location) (int, error) {
	n := 0
	for _, res := range r.d.reservations {
		if res.Date == date && res.DeviceType == deviceType && res.Location == location && res.Status != domain.ReservationStatusCancelled {
			n++
		}
	}
	return n, nil
}

func (r *memReservations) Update(ctx context.Context, res *domain.Reservation) error {
	existing, ok := r.d.reservations[res.ID]
	if !ok {
		return domain.NewNotFoundError("reservation", res.ID)
	}
	existing.Name, existing.PhoneNumber, existing.Location = res.Name, res.PhoneNumber, res.Location
	existing.PickupTime, existing.Status, existing.DeviceID, existing.Notes = res.PickupTime, res.Status, res.DeviceID, res.Notes
	r.d.reservations[res.ID] = existing
	return nil
}

func (r *memReservations) BindRental(ctx context.Context, id, rentalID string, status domain.ReservationStatus) error {
	res, ok := r.d.reservations[id]
	if !ok || res.RentalID != nil {
		return domain.NewConflictError("reservation %s is already bound to a rental", id)
	}
	res.RentalID = &rentalID
	res.Status = status
	r.d.reservations[id] = res
	return nil
}

func (r *memReservations) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	res, ok := r.d.reservations[id]
	if !ok {
		return domain.NewNotFoundError("reservation", id)
	}
	res.Status = status
	r.d.reservations[id] = res
	return nil
}

type memRentals struct{ *memRepos }

func (r *memRentals) NextSequence(ctx context.Context, prefix string) (int, error) {
	ids := make([]string, 0, len(r.d.rentals))
	for id := range r.d.rentals {
		ids = append(ids, id)
	}
	return nextSeq(ids, prefix), nil
}

func (r *memRentals) Create(ctx context.Context, rt *domain.Rental) error {
	if err := r.s.injected("rentals.Create"); err != nil {
		return err
	}
	if _, ok := r.d.rentals[rt.ID]; ok {
		return domain.NewConflictError("rentals_pkey - Key (id)=(%s) already exists.", rt.ID)
	}
	for _, open := range r.d.rentals {
		if open.DeviceID == rt.DeviceID && open.ReturnTime == nil {
			return domain.NewConflictError("rentals_one_open_per_device - Key (device_id)=(%s) already exists.", rt.DeviceID)
		}
	}
	r.d.rentals[rt.ID] = *rt
	return nil
}

func (r *memRentals) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	rt, ok := r.d.rentals[id]
	if !ok {
		return nil, domain.NewNotFoundError("rental", id)
	}
	return &rt, nil
}

func (r *memRentals) GetForUpdate(ctx context.Context, id string) (*domain.Rental, error) {
	return r.GetByID(ctx, id)
}

func (r *memRentals) ListByDate(ctx context.Context, f domain.RentalFilter) ([]domain.Rental, error) {
	out := []domain.Rental{}
	for _, rt := range r.d.rentals {
		if rt.Date != f.Date || (f.DeviceType != nil && rt.DeviceType != *f.DeviceType) {
			continue
		}
		if f.InProgressOnly && rt.ReturnTime != nil {
			continue
		}
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRentals) UpdateDevice(ctx context.Context, id, deviceID string) error {
	if err := r.s.injected("rentals.UpdateDevice"); err != nil {
		return err
	}
	rt, ok := r.d.rentals[id]
	if !ok || rt.ReturnTime != nil {
		return domain.NewNotFoundError("rental", id)
	}
	rt.DeviceID = deviceID
	r.d.rentals[id] = rt
	return nil
}

func (r *memRentals) Complete(ctx context.Context, c *domain.CompletedRental) error {
	rt, ok := r.d.rentals[c.ID]
	if !ok || rt.ReturnTime != nil {
		return domain.NewNotFoundError("rental", c.ID)
	}
	loc := c.ReturnLocation
	returned := c.ReturnTime
	staff := c.ReturnStaffName
	rt.ReturnLocation, rt.ReturnTime, rt.ReturnStaffName, rt.ReturnSignature = &loc, &returned, &staff, c.ReturnSignature
	r.d.rentals[c.ID] = rt
	return nil
}

// fixedClock returns a Clock pinned to t in the Toronto timezone when available.
func fixedClock(t time.Time) Clock {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		loc = time.UTC
	}
	return Clock{Location: loc, Now: func() time.Time { return t }}
}
