package attendance

import (
	"context"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/google/uuid"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
)

const Collection = "driver_attendance"

// Attendance is one day of a driver's presence record.
type Attendance struct {
	Id       string     `bson:"_id"`
	DriverId string     `bson:"driver_id"`
	Date     time.Time  `bson:"date"`
	CheckIn  *time.Time `bson:"check_in,omitempty"`
	CheckOut *time.Time `bson:"check_out,omitempty"`
	Status   string     `bson:"status"`
	Notes    string     `bson:"notes,omitempty"`
}

var (
	IdKey       = bsonutil.MustHaveTag(Attendance{}, "Id")
	DriverIdKey = bsonutil.MustHaveTag(Attendance{}, "DriverId")
	DateKey     = bsonutil.MustHaveTag(Attendance{}, "Date")
	CheckInKey  = bsonutil.MustHaveTag(Attendance{}, "CheckIn")
	CheckOutKey = bsonutil.MustHaveTag(Attendance{}, "CheckOut")
	StatusKey   = bsonutil.MustHaveTag(Attendance{}, "Status")
	NotesKey    = bsonutil.MustHaveTag(Attendance{}, "Notes")
)

// New returns a record for the driver on date, present unless status says
// otherwise.
func New(driverId string, date time.Time, status string) *Attendance {
	if status == "" {
		status = rideshare.AttendancePresent
	}
	return &Attendance{
		Id:       uuid.New().String(),
		DriverId: driverId,
		Date:     date,
		Status:   status,
	}
}

// ValidStatus reports whether status is a known attendance status.
func ValidStatus(status string) bool {
	return utility.StringSliceContains(rideshare.ValidAttendanceStatuses, status)
}

// Filter selects attendance records. Zero values match everything; the date
// bounds are inclusive.
type Filter struct {
	DriverId string
	From     time.Time
	To       time.Time
}

func (f Filter) Query() db.Q {
	filter := bson.M{}
	if f.DriverId != "" {
		filter[DriverIdKey] = f.DriverId
	}
	dates := bson.M{}
	if !f.From.IsZero() {
		dates["$gte"] = f.From
	}
	if !f.To.IsZero() {
		dates["$lte"] = f.To
	}
	if len(dates) > 0 {
		filter[DateKey] = dates
	}
	return db.Query(filter).Sort([]string{"-" + DateKey})
}

// Matches reports whether the record satisfies the filter.
func (f Filter) Matches(a *Attendance) bool {
	if f.DriverId != "" && a.DriverId != f.DriverId {
		return false
	}
	if !f.From.IsZero() && a.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.Date.After(f.To) {
		return false
	}
	return true
}

func ById(id string) db.Q {
	return db.Query(bson.M{IdKey: id})
}

func FindOneById(ctx context.Context, id string) (*Attendance, error) {
	a := &Attendance{}
	err := db.FindOneQContext(ctx, Collection, ById(id), a)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	return a, errors.Wrap(err, "finding attendance record")
}

func Find(ctx context.Context, query db.Q) ([]Attendance, error) {
	records := []Attendance{}
	err := db.FindAllQ(ctx, Collection, query, &records)
	return records, errors.Wrap(err, "finding attendance records")
}

func (a *Attendance) Insert(ctx context.Context) error {
	return errors.Wrapf(db.Insert(ctx, Collection, a), "inserting attendance record '%s'", a.Id)
}

// Update persists the mutable fields of the record.
func (a *Attendance) Update(ctx context.Context) error {
	set := bson.M{StatusKey: a.Status, NotesKey: a.Notes}
	unset := bson.M{}
	if a.CheckIn != nil {
		set[CheckInKey] = *a.CheckIn
	} else {
		unset[CheckInKey] = 1
	}
	if a.CheckOut != nil {
		set[CheckOutKey] = *a.CheckOut
	} else {
		unset[CheckOutKey] = 1
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	return errors.Wrapf(db.UpdateIdContext(ctx, Collection, a.Id, update), "updating attendance record '%s'", a.Id)
}

// Remove deletes the record, returning db.ErrNotFound if it does not exist.
func Remove(ctx context.Context, id string) error {
	info, err := db.Remove(ctx, Collection, bson.M{IdKey: id})
	if err != nil {
		return errors.Wrapf(err, "deleting attendance record '%s'", id)
	}
	if info.Removed == 0 {
		return db.ErrNotFound
	}
	return nil
}
