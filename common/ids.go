package common

// WorldID identifies one loaded world for the lifetime of the process.
// Zero is never allocated.
type WorldID int

type BuildingID int

type DoorID int

type WindowID int
