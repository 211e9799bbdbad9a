package noise

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/sadpig70/qns-go/common"
	"go.uber.org/zap"
)

type profileFile struct {
	Eps1QMean float64        `toml:"eps_1q_mean"`
	Eps2QMean float64        `toml:"eps_2q_mean"`
	Qubits    []qubitSection `toml:"qubits"`
	Edges     []edgeSection  `toml:"edges"`
	Xtalk     []xtalkSection `toml:"xtalk"`
}

type qubitSection struct {
	T1           float64 `toml:"t1"`
	T2           float64 `toml:"t2"`
	Eps1Q        float64 `toml:"eps_1q"`
	ReadoutError float64 `toml:"readout_error"`
}

type edgeSection struct {
	A     int     `toml:"a"`
	B     int     `toml:"b"`
	Eps2Q float64 `toml:"eps_2q"`
}

type xtalkSection struct {
	A      int     `toml:"a"`
	B      int     `toml:"b"`
	Weight float64 `toml:"weight"`
}

// LoadProfile reads a noise profile from a TOML file. Times are in
// microseconds, matching the calibration export format.
func LoadProfile(path string) (*Profile, error) {
	tomlString, err := common.ReadSettingsFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfile(tomlString)
}

func ParseProfile(tomlString string) (*Profile, error) {
	var pf profileFile
	if _, err := toml.Decode(tomlString, &pf); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse noise profile/reason:%s", err))
		return nil, err
	}
	qubits := make([]QubitCalibration, len(pf.Qubits))
	for i, q := range pf.Qubits {
		qubits[i] = QubitCalibration{
			T1:           q.T1,
			T2:           q.T2,
			Eps1Q:        q.Eps1Q,
			ReadoutError: q.ReadoutError,
		}
	}
	var edges map[[2]int]float64
	if len(pf.Edges) > 0 {
		edges = make(map[[2]int]float64, len(pf.Edges))
		for _, e := range pf.Edges {
			edges[edgeKey(e.A, e.B)] = e.Eps2Q
		}
	}
	var xtalk *CrosstalkMatrix
	if len(pf.Xtalk) > 0 {
		xtalk = NewCrosstalkMatrix(len(pf.Qubits))
		for _, x := range pf.Xtalk {
			if err := xtalk.Set(x.A, x.B, x.Weight); err != nil {
				return nil, err
			}
		}
	}
	return NewProfile(qubits, pf.Eps1QMean, pf.Eps2QMean, edges, xtalk)
}
