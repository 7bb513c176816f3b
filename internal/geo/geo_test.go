package geo

import (
	"math"
	"testing"
)

func TestTravelTimeSymmetric(t *testing.T) {
	a := TravelTimeMinutes(51.5074, -0.1278, 48.8566, 2.3522)
	b := TravelTimeMinutes(48.8566, 2.3522, 51.5074, -0.1278)
	if a != b {
		t.Fatalf("travel time not symmetric: %v vs %v", a, b)
	}
}

func TestTravelTimeSamePointIsBufferFloor(t *testing.T) {
	got := TravelTimeMinutes(40.7128, -74.0060, 40.7128, -74.0060)
	if got != DefaultBufferMin {
		t.Fatalf("same point should cost only the buffer, got %v", got)
	}
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	// one degree of latitude is ~111.19 km on a 6371 km sphere
	d := DistanceMeters(0, 0, 1, 0)
	if math.Abs(d-111194.9) > 100 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestTravelTimeUsesSpeedAndBuffer(t *testing.T) {
	d := DistanceMeters(0, 0, 1, 0)
	want := d / 1000 / DefaultSpeedKmh * 60 + DefaultBufferMin
	got := TravelTimeMinutes(0, 0, 1, 0)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("want %v, got %v", want, got)
	}
	slow := TravelTime(0, 0, 1, 0, 20, 0)
	if slow <= got {
		t.Fatalf("halving speed without buffer should cost more: %v vs %v", slow, got)
	}
}
