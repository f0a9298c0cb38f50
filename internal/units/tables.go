package units

import "math"

// Category tags.
type (
	LengthCategory       struct{}
	SpeedCategory        struct{}
	AccelerationCategory struct{}
	AngleCategory        struct{}
	AngularSpeedCategory struct{}
	FrequencyCategory    struct{}
	TemperatureCategory  struct{}
	VoltageCategory      struct{}
	CurrentCategory      struct{}
	WorkCategory         struct{}
	PowerCategory        struct{}
	PressureCategory     struct{}
)

// Quantity aliases, one per category.
type (
	Distance     = Quantity[LengthCategory]
	Speed        = Quantity[SpeedCategory]
	Acceleration = Quantity[AccelerationCategory]
	Angle        = Quantity[AngleCategory]
	AngularSpeed = Quantity[AngularSpeedCategory]
	Frequency    = Quantity[FrequencyCategory]
	Temperature  = Quantity[TemperatureCategory]
	Voltage      = Quantity[VoltageCategory]
	Current      = Quantity[CurrentCategory]
	Work         = Quantity[WorkCategory]
	Power        = Quantity[PowerCategory]
	Pressure     = Quantity[PressureCategory]
)

// Unit aliases, one per category.
type (
	LengthUnit       = Unit[LengthCategory]
	SpeedUnit        = Unit[SpeedCategory]
	AccelerationUnit = Unit[AccelerationCategory]
	AngleUnit        = Unit[AngleCategory]
	AngularSpeedUnit = Unit[AngularSpeedCategory]
	FrequencyUnit    = Unit[FrequencyCategory]
	TemperatureUnit  = Unit[TemperatureCategory]
	VoltageUnit      = Unit[VoltageCategory]
	CurrentUnit      = Unit[CurrentCategory]
	WorkUnit         = Unit[WorkCategory]
	PowerUnit        = Unit[PowerCategory]
	PressureUnit     = Unit[PressureCategory]
)

const (
	MetersPerFoot         = 0.3048
	MetersPerYard         = 0.9144
	MetersPerNauticalMile = 1852.0
	MetersPerMile         = 1609.344
	PascalsPerPSI         = 6894.757293168361
	JoulesPerWattHour     = 3600.0
	secondsPerHour        = 3600.0
)

// Length units.
var (
	Meters        = LengthUnit{0}
	NauticalMiles = LengthUnit{1}
	Miles         = LengthUnit{2}
	Kilometers    = LengthUnit{3}
	Feet          = LengthUnit{4}
	Yards         = LengthUnit{5}
)

// Speed units.
var (
	MetersPerSecond   = SpeedUnit{0}
	Knots             = SpeedUnit{1}
	FeetPerSecond     = SpeedUnit{2}
	MilesPerHour      = SpeedUnit{3}
	KilometersPerHour = SpeedUnit{4}
)

// Acceleration units.
var (
	MetersPerSecondSquared = AccelerationUnit{0}
	FeetPerSecondSquared   = AccelerationUnit{1}
)

// Angle units.
var (
	Radians = AngleUnit{0}
	Degrees = AngleUnit{1}
)

// Angular speed units.
var (
	RadiansPerSecond = AngularSpeedUnit{0}
	DegreesPerSecond = AngularSpeedUnit{1}
)

// Frequency units.
var (
	Hertz     = FrequencyUnit{0}
	KiloHertz = FrequencyUnit{1}
	MegaHertz = FrequencyUnit{2}
	GigaHertz = FrequencyUnit{3}
	TeraHertz = FrequencyUnit{4}
)

// Temperature units.
var (
	Celsius    = TemperatureUnit{0}
	Kelvin     = TemperatureUnit{1}
	Fahrenheit = TemperatureUnit{2}
)

// Electrical units.
var (
	Volts     = VoltageUnit{0}
	Amps      = CurrentUnit{0}
	MilliAmps = CurrentUnit{1}
)

// Energy and power units.
var (
	Joules        = WorkUnit{0}
	KiloWattHours = WorkUnit{1}
	WattHours     = WorkUnit{2}
	Watts         = PowerUnit{0}
	KiloWatts     = PowerUnit{1}
)

// Pressure units.
var (
	Pascals = PressureUnit{0}
	PSI     = PressureUnit{1}
)

func scaled(name string, scale float64) unitDef { return unitDef{name: name, scale: scale} }

var (
	lengthTable = unitTable{
		category: "length",
		units: []unitDef{
			scaled("Meters", 1),
			scaled("NauticalMiles", MetersPerNauticalMile),
			scaled("Miles", MetersPerMile),
			scaled("Kilometers", 1000),
			scaled("Feet", MetersPerFoot),
			scaled("Yards", MetersPerYard),
		},
	}
	speedTable = unitTable{
		category: "speed",
		units: []unitDef{
			scaled("MetersPerSecond", 1),
			scaled("Knots", MetersPerNauticalMile/secondsPerHour),
			scaled("FeetPerSecond", MetersPerFoot),
			scaled("MilesPerHour", MetersPerMile/secondsPerHour),
			scaled("KilometersPerHour", 1000/secondsPerHour),
		},
	}
	accelerationTable = unitTable{
		category: "acceleration",
		units: []unitDef{
			scaled("MetersPerSecondSquared", 1),
			scaled("FeetPerSecondSquared", MetersPerFoot),
		},
	}
	angleTable = unitTable{
		category: "angle",
		units: []unitDef{
			scaled("Radians", 1),
			scaled("Degrees", math.Pi/180),
		},
		display:   1,
		normalize: NormalizeRadians,
	}
	angularSpeedTable = unitTable{
		category: "angular speed",
		units: []unitDef{
			scaled("RadiansPerSecond", 1),
			scaled("DegreesPerSecond", math.Pi/180),
		},
		display: 1,
	}
	frequencyTable = unitTable{
		category: "frequency",
		units: []unitDef{
			scaled("Hertz", 1),
			scaled("KiloHertz", 1e3),
			scaled("MegaHertz", 1e6),
			scaled("GigaHertz", 1e9),
			scaled("TeraHertz", 1e12),
		},
	}
	temperatureTable = unitTable{
		category: "temperature",
		units: []unitDef{
			scaled("Celsius", 1),
			{name: "Kelvin", scale: 1, offset: -273.15},
			{name: "Fahrenheit", scale: 5.0 / 9.0, offset: -32 * 5.0 / 9.0},
		},
	}
	voltageTable = unitTable{
		category: "voltage",
		units:    []unitDef{scaled("Volts", 1)},
	}
	currentTable = unitTable{
		category: "current",
		units: []unitDef{
			scaled("Amps", 1),
			scaled("milliAmps", 1e-3),
		},
	}
	workTable = unitTable{
		category: "work",
		units: []unitDef{
			scaled("Joules", 1),
			scaled("KiloWattHours", 1000*JoulesPerWattHour),
			scaled("WattHours", JoulesPerWattHour),
		},
	}
	powerTable = unitTable{
		category: "power",
		units: []unitDef{
			scaled("Watts", 1),
			scaled("KiloWatts", 1e3),
		},
	}
	pressureTable = unitTable{
		category: "pressure",
		units: []unitDef{
			scaled("Pascals", 1),
			scaled("psi", PascalsPerPSI),
		},
	}
)

func (LengthCategory) table() *unitTable       { return &lengthTable }
func (SpeedCategory) table() *unitTable        { return &speedTable }
func (AccelerationCategory) table() *unitTable { return &accelerationTable }
func (AngleCategory) table() *unitTable        { return &angleTable }
func (AngularSpeedCategory) table() *unitTable { return &angularSpeedTable }
func (FrequencyCategory) table() *unitTable    { return &frequencyTable }
func (TemperatureCategory) table() *unitTable  { return &temperatureTable }
func (VoltageCategory) table() *unitTable      { return &voltageTable }
func (CurrentCategory) table() *unitTable      { return &currentTable }
func (WorkCategory) table() *unitTable         { return &workTable }
func (PowerCategory) table() *unitTable        { return &powerTable }
func (PressureCategory) table() *unitTable     { return &pressureTable }
