package hospitals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/symptoguide-engine/internal/domain"
)

func TestRecordFromTags(t *testing.T) {
	user := domain.Coordinates{Lat: 28.6, Lng: 77.2}
	tags := map[string]string{
		"name":                  "Apollo Hospital",
		"addr:street":           "Mathura Road",
		"addr:city":             "New Delhi",
		"emergency":             "yes",
		"contact:phone":         "+91 11 2692 5858",
		"healthcare:speciality": "cardiology; orthopaedics",
	}

	record := recordFromTags("osm-node-42", tags, domain.Coordinates{Lat: 28.5412, Lng: 77.2830}, user)

	assert.Equal(t, "osm-node-42", record.ID)
	assert.Equal(t, "Apollo Hospital", record.Name)
	assert.Equal(t, "Mathura Road, New Delhi", record.Address)
	assert.True(t, record.Emergency)
	assert.Equal(t, "+91 11 2692 5858", record.Phone)
	assert.Equal(t, []string{"cardiology", "orthopaedics"}, record.Specialties)
	assert.Equal(t, defaultRating, record.Rating)
	assert.NotEmpty(t, record.DistanceLabel)
}

func TestRecordFromTags_SparseTags(t *testing.T) {
	record := recordFromTags("osm-way-7", map[string]string{"name": "Clinic"}, domain.Coordinates{Lat: 1, Lng: 1}, domain.Coordinates{Lat: 1, Lng: 1})

	assert.Empty(t, record.Address)
	assert.False(t, record.Emergency)
	assert.Empty(t, record.Phone)
	assert.Nil(t, record.Specialties)
}
