package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/openretail/promotion-service/internal/apperr"
	"github.com/openretail/promotion-service/internal/models"
)

// InMemoryPromotionStore backs the service-layer repository interfaces with
// maps so services can be tested without Postgres. The Headers, Lines and
// Details views share the same data, so cascades and the evaluator read
// model behave like the real store.
type InMemoryPromotionStore struct {
	mu      sync.Mutex
	headers map[int]*models.PromotionHeader
	lines   map[int]*models.PromotionLine
	details map[int]*models.PromotionDetail
	nextID  int
	now     func() time.Time
}

func NewInMemoryPromotionStore() *InMemoryPromotionStore {
	return &InMemoryPromotionStore{
		headers: map[int]*models.PromotionHeader{},
		lines:   map[int]*models.PromotionLine{},
		details: map[int]*models.PromotionDetail{},
		now:     time.Now,
	}
}

// Headers returns the store as a HeaderRepo and PromotionReader.
func (s *InMemoryPromotionStore) Headers() *HeaderStoreView { return &HeaderStoreView{s} }

// Lines returns the store as a LineRepo.
func (s *InMemoryPromotionStore) Lines() *LineStoreView { return &LineStoreView{s} }

// Details returns the store as a DetailRepo.
func (s *InMemoryPromotionStore) Details() *DetailStoreView { return &DetailStoreView{s} }

// Counts reports how many headers, lines and details are stored. Used to
// assert batch atomicity.
func (s *InMemoryPromotionStore) Counts() (headers, lines, details int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.headers), len(s.lines), len(s.details)
}

func (s *InMemoryPromotionStore) nextIDLocked() int {
	s.nextID++
	return s.nextID
}

func copyHeader(h *models.PromotionHeader) *models.PromotionHeader {
	c := *h
	if h.EndDate != nil {
		end := *h.EndDate
		c.EndDate = &end
	}
	return &c
}

func copyLine(l *models.PromotionLine) *models.PromotionLine {
	c := *l
	if l.StartDate != nil {
		start := *l.StartDate
		c.StartDate = &start
	}
	if l.EndDate != nil {
		end := *l.EndDate
		c.EndDate = &end
	}
	return &c
}

func copyDetail(d *models.PromotionDetail) *models.PromotionDetail {
	c := *d
	if d.DiscountPercent != nil {
		v := *d.DiscountPercent
		c.DiscountPercent = &v
	}
	if d.DiscountAmount != nil {
		v := *d.DiscountAmount
		c.DiscountAmount = &v
	}
	if d.MinAmount != nil {
		v := *d.MinAmount
		c.MinAmount = &v
	}
	if d.MaxDiscount != nil {
		v := *d.MaxDiscount
		c.MaxDiscount = &v
	}
	if d.ConditionQuantity != nil {
		v := *d.ConditionQuantity
		c.ConditionQuantity = &v
	}
	if d.FreeQuantity != nil {
		v := *d.FreeQuantity
		c.FreeQuantity = &v
	}
	if d.ConditionProductID != nil {
		v := *d.ConditionProductID
		c.ConditionProductID = &v
	}
	if d.GiftProductID != nil {
		v := *d.GiftProductID
		c.GiftProductID = &v
	}
	return &c
}

// HeaderStoreView implements service.HeaderRepo, service.BatchRepo and
// service.PromotionReader.
type HeaderStoreView struct {
	s *InMemoryPromotionStore
}

func (v *HeaderStoreView) Create(ctx context.Context, h *models.PromotionHeader) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	h.ID = v.s.nextIDLocked()
	h.CreatedAt = v.s.now()
	h.UpdatedAt = h.CreatedAt
	v.s.headers[h.ID] = copyHeader(h)
	return nil
}

func (v *HeaderStoreView) Get(ctx context.Context, id int) (*models.PromotionHeader, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	h, ok := v.s.headers[id]
	if !ok {
		return nil, apperr.NotFoundf("promotion header %d not found", id)
	}
	return copyHeader(h), nil
}

func (v *HeaderStoreView) List(ctx context.Context) ([]*models.PromotionHeader, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []*models.PromotionHeader
	for _, h := range v.s.headers {
		out = append(out, copyHeader(h))
	}
	// newest first, matching the SQL listing
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (v *HeaderStoreView) Update(ctx context.Context, h *models.PromotionHeader) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.headers[h.ID]; !ok {
		return apperr.NotFoundf("promotion header %d not found", h.ID)
	}
	h.UpdatedAt = v.s.now()
	v.s.headers[h.ID] = copyHeader(h)
	return nil
}

func (v *HeaderStoreView) Delete(ctx context.Context, id int) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.headers[id]; !ok {
		return apperr.NotFoundf("promotion header %d not found", id)
	}
	for lid, l := range v.s.lines {
		if l.HeaderID != id {
			continue
		}
		for did, d := range v.s.details {
			if d.LineID == lid {
				delete(v.s.details, did)
			}
		}
		delete(v.s.lines, lid)
	}
	delete(v.s.headers, id)
	return nil
}

func (v *HeaderStoreView) CreateBatch(ctx context.Context, meta *models.PromotionMeta) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	now := v.s.now()

	meta.ID = v.s.nextIDLocked()
	meta.PromotionHeader.CreatedAt = now
	meta.PromotionHeader.UpdatedAt = now
	v.s.headers[meta.ID] = copyHeader(&meta.PromotionHeader)

	for i := range meta.Lines {
		line := &meta.Lines[i]
		line.HeaderID = meta.ID
		line.ID = v.s.nextIDLocked()
		line.PromotionLine.CreatedAt = now
		line.PromotionLine.UpdatedAt = now
		v.s.lines[line.ID] = copyLine(&line.PromotionLine)
		for j := range line.Details {
			d := &line.Details[j]
			d.LineID = line.ID
			d.ID = v.s.nextIDLocked()
			d.CreatedAt = now
			d.UpdatedAt = now
			v.s.details[d.ID] = copyDetail(d)
		}
	}
	return nil
}

func (v *HeaderStoreView) ActivePromotions(ctx context.Context, _ time.Time) ([]*models.PromotionMeta, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var metas []*models.PromotionMeta
	for _, h := range v.s.headers {
		if !h.Active {
			continue
		}
		meta := &models.PromotionMeta{PromotionHeader: *copyHeader(h)}
		for _, l := range v.s.lines {
			if l.HeaderID != h.ID || !l.Active {
				continue
			}
			lm := models.LineMeta{PromotionLine: *copyLine(l)}
			for _, d := range v.s.details {
				if d.LineID == l.ID {
					lm.Details = append(lm.Details, *copyDetail(d))
				}
			}
			sort.Slice(lm.Details, func(i, j int) bool { return lm.Details[i].ID < lm.Details[j].ID })
			meta.Lines = append(meta.Lines, lm)
		}
		sort.Slice(meta.Lines, func(i, j int) bool { return meta.Lines[i].ID < meta.Lines[j].ID })
		metas = append(metas, meta)
	}
	// creation order, matching the SQL read model
	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
	return metas, nil
}

// LineStoreView implements service.LineRepo.
type LineStoreView struct {
	s *InMemoryPromotionStore
}

func (v *LineStoreView) Create(ctx context.Context, l *models.PromotionLine) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	l.ID = v.s.nextIDLocked()
	l.CreatedAt = v.s.now()
	l.UpdatedAt = l.CreatedAt
	v.s.lines[l.ID] = copyLine(l)
	return nil
}

func (v *LineStoreView) Get(ctx context.Context, id int) (*models.PromotionLine, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	l, ok := v.s.lines[id]
	if !ok {
		return nil, apperr.NotFoundf("promotion line %d not found", id)
	}
	return copyLine(l), nil
}

func (v *LineStoreView) ListByHeader(ctx context.Context, headerID int) ([]*models.PromotionLine, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []*models.PromotionLine
	for _, l := range v.s.lines {
		if l.HeaderID == headerID {
			out = append(out, copyLine(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *LineStoreView) Update(ctx context.Context, l *models.PromotionLine) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.lines[l.ID]; !ok {
		return apperr.NotFoundf("promotion line %d not found", l.ID)
	}
	l.UpdatedAt = v.s.now()
	v.s.lines[l.ID] = copyLine(l)
	return nil
}

func (v *LineStoreView) Delete(ctx context.Context, id int) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.lines[id]; !ok {
		return apperr.NotFoundf("promotion line %d not found", id)
	}
	for did, d := range v.s.details {
		if d.LineID == id {
			delete(v.s.details, did)
		}
	}
	delete(v.s.lines, id)
	return nil
}

// DetailStoreView implements service.DetailRepo.
type DetailStoreView struct {
	s *InMemoryPromotionStore
}

func (v *DetailStoreView) Create(ctx context.Context, d *models.PromotionDetail) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d.ID = v.s.nextIDLocked()
	d.CreatedAt = v.s.now()
	d.UpdatedAt = d.CreatedAt
	v.s.details[d.ID] = copyDetail(d)
	return nil
}

func (v *DetailStoreView) Get(ctx context.Context, id int) (*models.PromotionDetail, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.details[id]
	if !ok {
		return nil, apperr.NotFoundf("promotion detail %d not found", id)
	}
	return copyDetail(d), nil
}

func (v *DetailStoreView) ListByLine(ctx context.Context, lineID int) ([]*models.PromotionDetail, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []*models.PromotionDetail
	for _, d := range v.s.details {
		if d.LineID == lineID {
			out = append(out, copyDetail(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *DetailStoreView) Update(ctx context.Context, d *models.PromotionDetail) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.details[d.ID]; !ok {
		return apperr.NotFoundf("promotion detail %d not found", d.ID)
	}
	d.UpdatedAt = v.s.now()
	v.s.details[d.ID] = copyDetail(d)
	return nil
}

func (v *DetailStoreView) SetActive(ctx context.Context, id int, active bool) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.details[id]
	if !ok {
		return apperr.NotFoundf("promotion detail %d not found", id)
	}
	d.Active = active
	d.UpdatedAt = v.s.now()
	return nil
}
