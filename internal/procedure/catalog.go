package procedure

import (
	"fmt"
	"regexp"
)

// Measurement patterns shared by step detection rules. All matching runs
// against a lowercased message.
var (
	voltReading     = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*v(?:olts?)?\b`)
	ohmReading      = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:ohms?|kohms?|mohms?)\b`)
	pressureReading = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:psi|in\.?\s*wc|wc)\b`)
	capReading      = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:uf|mfd)\b`)
)

// KeyFindings is the default catalog of high-severity finding phrases that
// justify abandoning the remaining checklist. The registry takes the active
// list as configuration; this is only the shipped default.
var KeyFindings = []string{
	"seized",
	"missing blade",
	"cracked heat exchanger",
	"sheared",
	"stripped gear",
	"burnt wiring",
	"melted connector",
	"locked up",
	"ruptured",
	"broken belt",
	"shattered",
}

// catalog holds the 11 registered procedures in detection order. Built once
// at load; a malformed definition is a static-data defect and panics.
var catalog = mustCatalog()

func mustCatalog() []Procedure {
	procs := []Procedure{
		{
			System:      "water_pump",
			DisplayName: "Water Pump",
			Keywords:    []string{"water pump", "pump won't prime", "no water pressure", "pump runs but no water"},
			Steps: []Step{
				{ID: "wp_1", Description: "Confirm the fresh tank has water and the pump switch is on"},
				{ID: "wp_2", Description: "Measure DC voltage at the pump terminals with the switch on",
					Prerequisites: []string{"wp_1"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"terminal", "pump", "voltage", "measured"}}},
				{ID: "wp_3", Description: "Check ground continuity from the pump body to chassis",
					Prerequisites: []string{"wp_1"},
					Detect:        &DetectRule{Value: ohmReading, Context: []string{"ground", "continuity", "ohm"}}},
				{ID: "wp_4", Description: "Test the pressure switch for cut-off and cut-in operation",
					Prerequisites: []string{"wp_2"}},
				{ID: "wp_5", Description: "Inspect the pump head and diaphragm for debris or damage",
					Prerequisites: []string{"wp_4"}},
			},
		},
		{
			System:      "lp_gas",
			DisplayName: "LP Gas System",
			Keywords:    []string{"lp gas", "propane", "lpg"},
			Steps: []Step{
				{ID: "lpg_1", Description: "Verify tank level and open the service valve fully"},
				{ID: "lpg_2", Description: "Run a regulator pressure test (11 in WC operating)",
					Prerequisites: []string{"lpg_1"},
					Detect:        &DetectRule{Value: pressureReading, Context: []string{"pressure", "regulator", "water column"}}},
				{ID: "lpg_3", Description: "Perform a leak-down test on the supply line",
					Prerequisites: []string{"lpg_1"}},
				{ID: "lpg_4", Description: "Confirm the manual shutoff valves at each appliance are open",
					Prerequisites: []string{"lpg_2"}},
				{ID: "lpg_5", Description: "Run an ignition test at the affected appliance",
					Prerequisites: []string{"lpg_4"}},
			},
		},
		{
			System:      "furnace",
			DisplayName: "Furnace",
			Keywords:    []string{"furnace", "no heat", "heater won't"},
			Steps: []Step{
				{ID: "fur_1", Description: "Verify thermostat call for heat with set point above ambient"},
				{ID: "fur_2", Description: "Measure battery voltage at the furnace during blower start",
					Prerequisites: []string{"fur_1"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"furnace", "blower", "battery", "voltage"}}},
				{ID: "fur_3", Description: "Confirm the blower reaches speed and the sail switch closes",
					Prerequisites: []string{"fur_2"}},
				{ID: "fur_4", Description: "Check LP supply and igniter spark at the burner",
					Prerequisites: []string{"fur_3"}},
				{ID: "fur_5", Description: "Inspect the combustion chamber and flame pattern",
					Prerequisites: []string{"fur_4"}},
			},
		},
		{
			System:      "roof_ac",
			DisplayName: "Roof Air Conditioner",
			Keywords:    []string{"air conditioner", "ac not cooling", "roof ac", "a/c"},
			Steps: []Step{
				{ID: "ac_1", Description: "Confirm shore power or generator supply at the unit"},
				{ID: "ac_2", Description: "Measure line voltage at the AC unit under load",
					Prerequisites: []string{"ac_1"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"line", "compressor", "voltage"}}},
				{ID: "ac_3", Description: "Check compressor start and run capacitor values",
					Prerequisites: []string{"ac_2"},
					Detect:        &DetectRule{Value: capReading, Context: []string{"capacitor"}}},
				{ID: "ac_4", Description: "Measure the temperature split across the evaporator",
					Prerequisites: []string{"ac_2"}},
				{ID: "ac_5", Description: "Inspect the fan blades and condenser coil",
					Prerequisites: []string{"ac_4"}},
			},
		},
		{
			System:      "refrigerator",
			DisplayName: "Refrigerator",
			Keywords:    []string{"fridge", "refrigerator", "freezer", "cooling unit"},
			Steps: []Step{
				{ID: "ref_1", Description: "Confirm the unit powers up on both AC and LP modes"},
				{ID: "ref_2", Description: "Check for proper level and clear venting",
					Prerequisites: []string{"ref_1"}},
				{ID: "ref_3", Description: "Measure the heating element resistance",
					Prerequisites: []string{"ref_1"},
					Detect:        &DetectRule{Value: ohmReading, Context: []string{"element", "resistance", "ohm"}}},
				{ID: "ref_4", Description: "Test thermistor position and resistance",
					Prerequisites: []string{"ref_3"}},
				{ID: "ref_5", Description: "Inspect the boiler area for ammonia residue or yellow stain",
					Prerequisites: []string{"ref_2"}},
			},
		},
		{
			System:      "slide_out",
			DisplayName: "Slide-Out",
			Keywords:    []string{"slide-out", "slide out", "slideout"},
			Steps: []Step{
				{ID: "so_1", Description: "Verify battery state of charge and release the room lock"},
				{ID: "so_2", Description: "Measure voltage at the slide motor while operating the switch",
					Prerequisites: []string{"so_1"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"slide", "motor", "voltage"}}},
				{ID: "so_3", Description: "Check the controller fuse and breaker",
					Prerequisites: []string{"so_1"}},
				{ID: "so_4", Description: "Inspect the drive mechanism for obstructions or sheared pins",
					Prerequisites: []string{"so_2"}},
				{ID: "so_5", Description: "Test room travel and re-synchronize the rams",
					Prerequisites: []string{"so_4"}},
			},
		},
		{
			System:      "leveling",
			DisplayName: "Leveling System",
			Keywords:    []string{"leveling", "levelling", "level jack", "jacks"},
			Steps: []Step{
				{ID: "lev_1", Description: "Check hydraulic fluid level and battery voltage at the pump"},
				{ID: "lev_2", Description: "Verify the control panel powers on with no fault codes",
					Prerequisites: []string{"lev_1"}},
				{ID: "lev_3", Description: "Measure voltage at the pump motor solenoid during extend",
					Prerequisites: []string{"lev_2"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"solenoid", "jack", "voltage"}}},
				{ID: "lev_4", Description: "Inspect lines and cylinders for leaks or drift",
					Prerequisites: []string{"lev_3"}},
				{ID: "lev_5", Description: "Cycle each jack individually in manual mode",
					Prerequisites: []string{"lev_4"}},
			},
		},
		{
			System:      "inverter_converter",
			DisplayName: "Inverter/Converter",
			Keywords:    []string{"inverter", "converter"},
			Steps: []Step{
				{ID: "inv_1", Description: "Record the input source and the state of all status LEDs"},
				{ID: "inv_2", Description: "Measure DC input voltage at the inverter terminals",
					Prerequisites: []string{"inv_1"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"inverter", "input", "terminal", "voltage"}}},
				{ID: "inv_3", Description: "Measure AC output voltage under a known load",
					Prerequisites: []string{"inv_2"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"output", "load"}}},
				{ID: "inv_4", Description: "Check cable lugs and chassis ground for heat or corrosion",
					Prerequisites: []string{"inv_2"}},
				{ID: "inv_5", Description: "Verify transfer relay switching between shore and inverter",
					Prerequisites: []string{"inv_3"}},
			},
		},
		{
			System:      "electrical_12v",
			DisplayName: "12V Electrical",
			Keywords:    []string{"12v", "12 volt", "lights"},
			Steps: []Step{
				{ID: "e12_1", Description: "Measure house battery voltage at rest",
					Detect: &DetectRule{Value: voltReading, Context: []string{"battery", "rest", "voltage"}}},
				{ID: "e12_2", Description: "Check the main fuse panel for blown fuses",
					Prerequisites: []string{"e12_1"}},
				{ID: "e12_3", Description: "Measure voltage drop across the affected circuit",
					Prerequisites: []string{"e12_2"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"drop", "circuit"}}},
				{ID: "e12_4", Description: "Check ground connections at the chassis bus",
					Prerequisites: []string{"e12_2"},
					Detect:        &DetectRule{Value: ohmReading, Context: []string{"ground", "continuity", "ohm"}}},
				{ID: "e12_5", Description: "Isolate the circuit and test the load directly",
					Prerequisites: []string{"e12_3"}},
			},
		},
		{
			System:      "electrical_ac",
			DisplayName: "120V Electrical",
			Keywords:    []string{"120v", "120 volt", "shore power", "outlet", "gfci"},
			Steps: []Step{
				{ID: "eac_1", Description: "Verify pedestal power and cord condition"},
				{ID: "eac_2", Description: "Measure voltage at the transfer switch output",
					Prerequisites: []string{"eac_1"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"transfer", "switch", "voltage"}}},
				{ID: "eac_3", Description: "Check main and branch breakers in the distribution panel",
					Prerequisites: []string{"eac_1"}},
				{ID: "eac_4", Description: "Test and reset GFCI outlets on the affected branch",
					Prerequisites: []string{"eac_3"}},
				{ID: "eac_5", Description: "Measure voltage at the affected outlet under load",
					Prerequisites: []string{"eac_4"},
					Detect:        &DetectRule{Value: voltReading, Context: []string{"outlet", "load"}}},
			},
		},
		{
			System:      "consumer_appliance",
			DisplayName: "Consumer Appliance",
			Keywords:    []string{"tv", "television", "microwave", "stereo", "appliance"},
			Steps: []Step{
				{ID: "ca_1", Description: "Confirm the outlet feeding the appliance is live",
					Detect: &DetectRule{Value: voltReading, Context: []string{"outlet", "live", "voltage"}}},
				{ID: "ca_2", Description: "Test the appliance on a known-good circuit",
					Prerequisites: []string{"ca_1"}},
				{ID: "ca_3", Description: "Check the appliance power cord and inline fuse",
					Prerequisites: []string{"ca_1"}},
				{ID: "ca_4", Description: "Verify input source and control settings",
					Prerequisites: []string{"ca_2"}},
				{ID: "ca_5", Description: "Bench-test the appliance outside the coach",
					Prerequisites: []string{"ca_3"}},
			},
		},
	}

	for i := range procs {
		if err := Validate(&procs[i]); err != nil {
			panic(fmt.Sprintf("procedure catalog: %s: %v", procs[i].System, err))
		}
	}
	return procs
}

// RegisteredSystems returns the system keys in registration order.
func RegisteredSystems() []string {
	keys := make([]string, len(catalog))
	for i := range catalog {
		keys[i] = catalog[i].System
	}
	return keys
}

// Get returns the procedure for a system key, or nil for an unknown key.
// Procedures are immutable static data; callers must not modify them.
func Get(system string) *Procedure {
	for i := range catalog {
		if catalog[i].System == system {
			return &catalog[i]
		}
	}
	return nil
}
