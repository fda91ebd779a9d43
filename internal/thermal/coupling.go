package thermal

// HeatFlows are the instantaneous heat-flow rates in W for one state.
type HeatFlows struct {
	Wall1 float64 // ambient -> zone 1
	Wall2 float64 // ambient -> zone 2
	Cross float64 // zone 2 -> zone 1
}

// CouplingNetwork is the set of heat paths active for one case.
type CouplingNetwork struct {
	WallResistance1 float64 // > 0, K/W
	WallResistance2 float64 // > 0, K/W
	Conductance     float64 // >= 0, W/K between the zones
	AuxiliaryHeat   float64 // >= 0, W injected into zone 1
}

func (n *CouplingNetwork) Validate() error {
	if n.WallResistance1 <= 0 {
		return configErr("wall_resistance_1", ErrNonPositiveResistance)
	}
	if n.WallResistance2 <= 0 {
		return configErr("wall_resistance_2", ErrNonPositiveResistance)
	}
	if n.Conductance < 0 {
		return configErr("conductance", ErrNegativeConductance)
	}
	if n.AuxiliaryHeat < 0 {
		return configErr("auxiliary_heat", ErrNegativeAuxiliaryHeat)
	}
	return nil
}

// Flows evaluates the network at temperatures t1 and t2.
func (n CouplingNetwork) Flows(ambient, t1, t2 float64) HeatFlows {
	return HeatFlows{
		Wall1: (ambient - t1) / n.WallResistance1,
		Wall2: (ambient - t2) / n.WallResistance2,
		Cross: (t2 - t1) * n.Conductance,
	}
}
