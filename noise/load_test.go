//go:build unit
// +build unit

package noise

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sadpig70/qns-go/common"
	"github.com/stretchr/testify/assert"
)

func TestParseProfile(t *testing.T) {
	in := heredoc.Doc(`
		eps_1q_mean = 0.001
		eps_2q_mean = 0.01

		[[qubits]]
		t1 = 100.0
		t2 = 80.0
		eps_1q = 0.001
		readout_error = 0.02

		[[qubits]]
		t1 = 90.0
		t2 = 200.0
		eps_1q = 0.002
		readout_error = 0.03

		[[edges]]
		a = 0
		b = 1
		eps_2q = 0.015

		[[xtalk]]
		a = 0
		b = 1
		weight = 0.4
	`)
	p, err := ParseProfile(in)
	assert.Nil(t, err)
	assert.Equal(t, 2, p.NumQubits())
	assert.Equal(t, 0.001, p.Eps1QMean)
	assert.Equal(t, 80.0, p.Qubits[0].T2)
	// T2 above 2*T1 is clamped at construction.
	assert.Equal(t, 180.0, p.Qubits[1].T2)
	assert.Equal(t, 0.015, p.EdgeEps2Q(1, 0))
	assert.InDelta(t, 1.0, p.Crosstalk(0, 1), 1e-12)
}

func TestParseProfileBrokenToml(t *testing.T) {
	_, err := ParseProfile("[[qubits]\nt1 = 100")
	assert.Error(t, err)
}

func TestLoadProfileFromAsset(t *testing.T) {
	path, err := common.GetAssetAbsPath("noise_profile.toml")
	assert.Nil(t, err)

	p, err := LoadProfile(path)
	assert.Nil(t, err)
	assert.Equal(t, 4, p.NumQubits())
	assert.Equal(t, 0.012, p.EdgeEps2Q(0, 1))
	assert.InDelta(t, 0.5, p.Crosstalk(0, 1), 1e-12)
	assert.InDelta(t, 1.0, p.Crosstalk(1, 2), 1e-12)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile("no_such_profile.toml")
	assert.Error(t, err)
}
