package balance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStoreLoadsConfigBalanceYaml(t *testing.T) {
	s, err := NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	table := s.Get()
	require.Greater(t, table.TierMultiplier, 0.0)
	require.Len(t, table.CargoCapacity, MaxTier)
}

func TestScaledAppliesGeometricMultiplier(t *testing.T) {
	table := &Table{TierMultiplier: 2.0}
	require.Equal(t, 10.0, table.Scaled(10, 1))
	require.Equal(t, 20.0, table.Scaled(10, 2))
	require.Equal(t, 40.0, table.Scaled(10, 3))
}

func TestScaledClampsOutOfRangeTiers(t *testing.T) {
	table := &Table{TierMultiplier: 2.0}
	require.Equal(t, table.Scaled(10, 1), table.Scaled(10, 0))
	require.Equal(t, table.Scaled(10, MaxTier), table.Scaled(10, MaxTier+3))
}

func TestCargoMaxIndexesByTier(t *testing.T) {
	table := &Table{CargoCapacity: []int{100, 200, 300, 400, 500}}
	require.Equal(t, 100, table.CargoMax(1))
	require.Equal(t, 500, table.CargoMax(5))
}

func TestUpgradeCostForReturnsFalseAtMaxTier(t *testing.T) {
	table := &Table{
		UpgradeRequirements: map[Component][]UpgradeCost{
			ComponentEngine: {{Credits: 100}, {Credits: 200}, {Credits: 300}, {Credits: 400}},
		},
	}
	cost, ok := table.UpgradeCostFor(ComponentEngine, 1)
	require.True(t, ok)
	require.Equal(t, int64(200), cost.Credits)

	_, ok = table.UpgradeCostFor(ComponentEngine, MaxTier)
	require.False(t, ok)
}

func TestReloadSwapsTableAtomically(t *testing.T) {
	s, err := NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	before := s.Get()
	require.NoError(t, s.Reload())
	after := s.Get()
	require.Equal(t, before.TierMultiplier, after.TierMultiplier)
}

func TestReloadRejectsMissingFile(t *testing.T) {
	s, err := NewStore("../../config/balance.yaml")
	require.NoError(t, err)
	s.path = "does-not-exist.yaml"
	require.Error(t, s.Reload())
}
