package seatmaps

import (
	"fmt"
	"strings"
	"sync"

	"seatline/internal/shared/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryRegular Category = "regular"
	CategoryPremium Category = "premium"
	CategoryVIP     Category = "vip"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryRegular, CategoryPremium, CategoryVIP:
		return true
	}
	return false
}

// SeatStatus is the stored status of a seat. It only moves forward:
// available -> reserved -> booked.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatReserved  SeatStatus = "reserved"
	SeatBooked    SeatStatus = "booked"
)

func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatAvailable, SeatReserved, SeatBooked:
		return true
	}
	return false
}

func (s SeatStatus) String() string {
	return string(s)
}

func (s SeatStatus) rank() int {
	switch s {
	case SeatReserved:
		return 1
	case SeatBooked:
		return 2
	}
	return 0
}

// MaxPriceDecimals is the price scale a booking amount can store exactly
const MaxPriceDecimals = 2

// Position is the top-left corner of a seat on the canvas
type Position struct {
	Left float64
	Top  float64
}

type Size struct {
	Width  float64
	Height float64
}

// SeatData is the payload carried by each seat object
type SeatData struct {
	SeatNo    string          `json:"seatNo" validate:"required,max=32"`
	Price     decimal.Decimal `json:"price"`
	Category  Category        `json:"category" validate:"required,oneof=regular premium vip"`
	Status    SeatStatus      `json:"status" validate:"required,oneof=available reserved booked"`
	BookingID string          `json:"bookingId,omitempty"`
}

// Seat is one positioned object of a layout
type Seat struct {
	Left   float64  `json:"left"`
	Top    float64  `json:"top"`
	Width  float64  `json:"width" validate:"gte=0"`
	Height float64  `json:"height" validate:"gte=0"`
	Data   SeatData `json:"data"`
}

// Layout is the ordered seat object list of a seat map
type Layout struct {
	Objects []Seat `json:"objects"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func seatValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// NewSeat builds a seat object. Category defaults to regular and status to available.
func NewSeat(pos Position, size Size, data SeatData) (Seat, error) {
	data.SeatNo = strings.TrimSpace(data.SeatNo)
	if data.Category == "" {
		data.Category = CategoryRegular
	}
	if data.Status == "" {
		data.Status = SeatAvailable
	}

	seat := Seat{
		Left:   pos.Left,
		Top:    pos.Top,
		Width:  size.Width,
		Height: size.Height,
		Data:   data,
	}
	if err := checkSeat(seat); err != nil {
		return Seat{}, err
	}
	return seat, nil
}

func checkSeat(seat Seat) error {
	if strings.TrimSpace(seat.Data.SeatNo) == "" {
		return apperrors.Validation("seatNo", "seat number is required")
	}
	if seat.Data.Price.IsNegative() {
		return apperrors.Validation("price", fmt.Sprintf("seat %s has a negative price", seat.Data.SeatNo))
	}
	if !seat.Data.Price.Equal(seat.Data.Price.Round(MaxPriceDecimals)) {
		return apperrors.Validation("price", fmt.Sprintf("seat %s price has more than %d decimal places", seat.Data.SeatNo, MaxPriceDecimals))
	}
	if err := seatValidator().Struct(seat); err != nil {
		return apperrors.Validation("seat", fmt.Sprintf("seat %s: %s", seat.Data.SeatNo, describe(err)))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// ValidateLayout trims seat numbers in place, then rejects objects missing
// required fields and repeated seat numbers.
func ValidateLayout(objects []Seat) error {
	seen := make(map[string]struct{}, len(objects))
	for i := range objects {
		objects[i].Data.SeatNo = strings.TrimSpace(objects[i].Data.SeatNo)
		seat := objects[i]
		if err := checkSeat(seat); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		if _, dup := seen[seat.Data.SeatNo]; dup {
			return &apperrors.DuplicateSeatError{SeatNo: seat.Data.SeatNo}
		}
		seen[seat.Data.SeatNo] = struct{}{}
	}
	return nil
}

// Index returns the position of each seat number in the layout
func (l Layout) Index() map[string]int {
	idx := make(map[string]int, len(l.Objects))
	for i, seat := range l.Objects {
		idx[seat.Data.SeatNo] = i
	}
	return idx
}

// Find looks a seat up by number with a linear scan
func (l Layout) Find(seatNo string) (Seat, bool) {
	for _, seat := range l.Objects {
		if seat.Data.SeatNo == seatNo {
			return seat, true
		}
	}
	return Seat{}, false
}

// Clone returns a deep copy of the layout
func (l Layout) Clone() Layout {
	objects := make([]Seat, len(l.Objects))
	copy(objects, l.Objects)
	return Layout{Objects: objects}
}

// CommitResult reports the outcome of marking seats booked.
// Seats already held by the same booking count as Booked so retries stay idempotent.
type CommitResult struct {
	Booked        []string `json:"booked"`
	AlreadyBooked []string `json:"already_booked,omitempty"`
	Missing       []string `json:"missing,omitempty"`
}

// HasConflict reports whether any requested seat could not be committed
func (r CommitResult) HasConflict() bool {
	return len(r.AlreadyBooked) > 0 || len(r.Missing) > 0
}

// Conflicting lists the seats that need reconciliation
func (r CommitResult) Conflicting() []string {
	out := make([]string, 0, len(r.AlreadyBooked)+len(r.Missing))
	out = append(out, r.AlreadyBooked...)
	return append(out, r.Missing...)
}

// CommitSeats marks the named seats booked for bookingID on a copy of the layout.
// changed is false when the stored layout needs no write.
func CommitSeats(layout Layout, seatNos []string, bookingID string) (next Layout, result CommitResult, changed bool) {
	next = layout.Clone()
	idx := next.Index()
	result.Booked = []string{}

	seen := make(map[string]struct{}, len(seatNos))
	for _, seatNo := range seatNos {
		if _, dup := seen[seatNo]; dup {
			continue
		}
		seen[seatNo] = struct{}{}

		i, ok := idx[seatNo]
		if !ok {
			result.Missing = append(result.Missing, seatNo)
			continue
		}
		data := &next.Objects[i].Data
		if data.Status == SeatBooked {
			if data.BookingID == bookingID && bookingID != "" {
				result.Booked = append(result.Booked, seatNo)
			} else {
				result.AlreadyBooked = append(result.AlreadyBooked, seatNo)
			}
			continue
		}
		data.Status = SeatBooked
		data.BookingID = bookingID
		result.Booked = append(result.Booked, seatNo)
		changed = true
	}
	return next, result, changed
}

// MergeBooked carries the stored seat states into an incoming layout.
// Client supplied booking ids are dropped. A booked seat keeps its status and
// booking and cannot be removed. No seat moves back to an earlier status.
func MergeBooked(stored, incoming Layout) (Layout, error) {
	merged := incoming.Clone()
	for i := range merged.Objects {
		merged.Objects[i].Data.BookingID = ""
	}
	idx := merged.Index()
	for _, seat := range stored.Objects {
		i, ok := idx[seat.Data.SeatNo]
		if !ok {
			if seat.Data.Status == SeatBooked {
				return Layout{}, apperrors.Conflict("seat %s is booked and cannot be removed from the layout", seat.Data.SeatNo)
			}
			continue
		}
		data := &merged.Objects[i].Data
		if seat.Data.Status == SeatBooked {
			data.Status = SeatBooked
			data.BookingID = seat.Data.BookingID
			continue
		}
		if seat.Data.Status.rank() > data.Status.rank() {
			data.Status = seat.Data.Status
		}
	}
	return merged, nil
}

// PriceSeats returns the stored seat for each requested number.
// Unknown seats are a ValidationError; booked seats a ConflictError.
func PriceSeats(layout Layout, seatNos []string) ([]Seat, decimal.Decimal, error) {
	if len(seatNos) == 0 {
		return nil, decimal.Zero, apperrors.Validation("seats", "at least one seat must be selected")
	}
	idx := layout.Index()
	seats := make([]Seat, 0, len(seatNos))
	total := decimal.Zero
	seen := make(map[string]struct{}, len(seatNos))
	for _, seatNo := range seatNos {
		if _, dup := seen[seatNo]; dup {
			return nil, decimal.Zero, apperrors.Validation("seats", fmt.Sprintf("seat %s selected twice", seatNo))
		}
		seen[seatNo] = struct{}{}

		i, ok := idx[seatNo]
		if !ok {
			return nil, decimal.Zero, apperrors.Validation("seats", fmt.Sprintf("seat %s does not exist", seatNo))
		}
		seat := layout.Objects[i]
		if seat.Data.Status == SeatBooked {
			return nil, decimal.Zero, apperrors.Conflict("seat %s is already booked", seatNo)
		}
		seats = append(seats, seat)
		total = total.Add(seat.Data.Price)
	}
	return seats, total, nil
}

// Summary aggregates a layout for display
type Summary struct {
	Total          int                `json:"total"`
	ByStatus       map[SeatStatus]int `json:"by_status"`
	ByCategory     map[Category]int   `json:"by_category"`
	AvailableValue decimal.Decimal    `json:"available_value"`
}

func Summarize(layout Layout) Summary {
	s := Summary{
		Total:          len(layout.Objects),
		ByStatus:       map[SeatStatus]int{},
		ByCategory:     map[Category]int{},
		AvailableValue: decimal.Zero,
	}
	for _, seat := range layout.Objects {
		s.ByStatus[seat.Data.Status]++
		s.ByCategory[seat.Data.Category]++
		if seat.Data.Status == SeatAvailable {
			s.AvailableValue = s.AvailableValue.Add(seat.Data.Price)
		}
	}
	return s
}

const (
	gridSeatSize = 40
	gridGap      = 10
	gridMargin   = 20
	maxGridRows  = 26
	maxGridCols  = 100
)

// DefaultGridPrice is the base price used when a grid is generated without one
var DefaultGridPrice = decimal.NewFromInt(200)

// GenerateGrid lays out rows lettered from A with seats numbered from 1 in each row.
func GenerateGrid(rows, cols int, basePrice decimal.Decimal) ([]Seat, error) {
	if rows < 1 || rows > maxGridRows {
		return nil, apperrors.Validation("rows", fmt.Sprintf("must be between 1 and %d", maxGridRows))
	}
	if cols < 1 || cols > maxGridCols {
		return nil, apperrors.Validation("cols", fmt.Sprintf("must be between 1 and %d", maxGridCols))
	}
	if basePrice.IsNegative() {
		return nil, apperrors.Validation("price", "base price cannot be negative")
	}

	seats := make([]Seat, 0, rows*cols)
	for r := 0; r < rows; r++ {
		row := string(rune('A' + r))
		for c := 1; c <= cols; c++ {
			seat, err := NewSeat(
				Position{
					Left: float64(gridMargin + (c-1)*(gridSeatSize+gridGap)),
					Top:  float64(gridMargin + r*(gridSeatSize+gridGap)),
				},
				Size{Width: gridSeatSize, Height: gridSeatSize},
				SeatData{SeatNo: fmt.Sprintf("%s%d", row, c), Price: basePrice},
			)
			if err != nil {
				return nil, err
			}
			seats = append(seats, seat)
		}
	}
	return seats, nil
}

// GridExtent returns the canvas size needed to draw a generated grid
func GridExtent(rows, cols int) (width, height float64) {
	width = float64(2*gridMargin + cols*gridSeatSize + (cols-1)*gridGap)
	height = float64(2*gridMargin + rows*gridSeatSize + (rows-1)*gridGap)
	return width, height
}
