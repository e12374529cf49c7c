// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package gotraj

const (
	PI      = 3.1415926535897932 // Pi
	G0      = 9.80665            // Standard gravity [m/s^2]
	Kelvin0 = 273.15             // 0 degC in Kelvin
	MilFull = 6400.0             // Units of a full circle (azimuth)
)

// Air and standard atmosphere
const (
	AirMolarMass     = 0.02896968  // Molar mass of dry air [kg/mol]
	GasConstant      = 8.314462618 // Universal gas constant [J/(mol*K)]
	AirGasConstant   = 287.05      // Specific gas constant of dry air [J/(kg*K)]
	LapseRate        = 0.0065      // ISA temperature lapse rate [K/m]
	TropopauseHeight = 11000.0     // Upper limit of the lapse rate model [m]
	TropopauseTemp   = 216.65      // Temperature above the tropopause [K]
	IsaSeaLevelTemp  = 288.15      // ISA sea level temperature [K]
	IsaPressureExp   = 5.255       // Exponent of the power-law pressure formula
	SoundSpeed0      = 331.0       // Speed of sound at 0 degC [m/s]
	SoundSpeedSlope  = 0.6         // Speed of sound gain per degC [m/s/K]
)

// Drag model defaults
const (
	AxialArea      = 0.125 // Axial cross-sectional area [m^2] (estimate)
	AxialCw        = 1.2   // Axial drag coefficient
	MachSubsonic   = 0.8   // Lower bound of the transonic band
	MachSupersonic = 1.2   // Upper bound of the transonic band
	CwSubsonic     = 0.14  // Drag coefficient below the transonic band
	CwSuperSlope   = -0.15 // Supersonic drag coefficient slope
	CwSuperConst   = 0.57  // Supersonic drag coefficient intercept
	CwTransSlope   = 0.625 // Transonic drag coefficient slope
	CwTransConst   = -0.36 // Transonic drag coefficient intercept
)

// Meteo A table layout
const (
	MeteoCols        = 5    // height, temperature, wind direction, wind velocity, checksum
	MeteoPlaceholder = "//" // Missing value token
	WindDirScale     = 100  // Table wind direction to azimuth units
)
