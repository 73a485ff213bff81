package analysis

import (
	"time"

	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/models"
)

const dateLayout = "2006-01-02"

// BuildTimeline buckets items by UTC calendar day. Every day between the first and the
// last item is present, zero-filled, in ascending order.
func BuildTimeline(items []models.ContentItem) []models.TimelineBucket {
	if len(items) == 0 {
		return []models.TimelineBucket{}
	}

	days := make(map[time.Time]*models.TimelineBucket, len(items))
	first, last := utcDay(items[0].CreatedAt), utcDay(items[0].CreatedAt)
	for _, item := range items {
		day := utcDay(item.CreatedAt)
		if day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}

		bucket, ok := days[day]
		if !ok {
			bucket = &models.TimelineBucket{Date: day.Format(dateLayout)}
			days[day] = bucket
		}
		if item.Kind == enums.ItemKindPost {
			bucket.Posts++
		} else {
			bucket.Comments++
		}
		bucket.TotalActivity++
		bucket.TotalScore += item.Score
	}

	timeline := make([]models.TimelineBucket, 0, int(last.Sub(first).Hours()/24)+1)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if bucket, ok := days[day]; ok {
			timeline = append(timeline, *bucket)
			continue
		}
		timeline = append(timeline, models.TimelineBucket{Date: day.Format(dateLayout)})
	}

	return timeline
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
