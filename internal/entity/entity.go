// Package entity defines the feature records produced by extraction and
// consumed by the operator side.
package entity

import "strconv"

// Flags packs the lifetime and visibility bits of a representation.
type Flags uint8

const (
	FlagLocal Flags = 1 << iota
	FlagOnClient
	FlagStatic
	FlagTemporary
	FlagShowInCompass
	FlagShowOnMap
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Vec3 is a position, rotation (pitch, yaw, roll) or velocity.
type Vec3 [3]float32

// Feature is one displayable entity.
type Feature struct {
	Category uint8
	Index    int32
	Color    [4]int32
	Position Vec3
	// Rotation and Velocity are nil when the target did not provide them.
	Rotation *Vec3
	Velocity *Vec3
	Label    string
	Flags    Flags
}

// Snapshot is one complete extraction result.
type Snapshot struct {
	Features []Feature
	// Unresolved is set when the manager could not be located; Features is
	// then empty and Reason says why.
	Unresolved bool
	Reason     string
}

// Category codes of the representation type field.
const (
	CategoryDefault uint8 = iota
	CategoryBeacon
	CategoryCrate
	CategoryHub
	CategoryPing
	CategoryPlayer
	CategoryRadarTower
	CategoryResource
	CategorySpaceElevator
	CategoryStartingPod
	CategoryTrain
	CategoryTrainStation
	CategoryVehicle
	CategoryVehicleDockingStation
)

var categoryNames = [...]string{
	"Default", "Beacon", "Crate", "Hub",
	"Ping", "Player", "Radar Tower", "Resource",
	"Space Elevator", "Starting Pod", "Train", "Train Station",
	"Vehicle", "Vehicle Docking Station",
}

// CategoryName returns the display name of a category code.
func CategoryName(c uint8) string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown(" + strconv.Itoa(int(c)) + ")"
}
