package domain

import (
	attdomain "fusepair/internal/services/attendance/domain"
	dirdomain "fusepair/internal/services/directory/domain"
	histdomain "fusepair/internal/services/history/domain"
)

// The engine consumes the other verticals through their store ports

// DirectoryPort is the SE directory surface
type DirectoryPort = dirdomain.StorePort

// HistoryPort is the match history surface
type HistoryPort = histdomain.StorePort

// AttendancePort is the attendance surface
type AttendancePort = attdomain.IntakePort
