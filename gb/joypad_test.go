package gb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoypad_ReadComposesSelectAndState(t *testing.T) {
	rom := make([]byte, romSize)
	cart, err := LoadCartridge(rom)
	require.NoError(t, err)

	joypad := NewJoypad()
	bus := NewBus(cart, joypad, nil)

	joypad.Press(ButtonA)
	joypad.Press(ButtonUp)

	bus.Write(regP1, 0x10) // select action buttons (P15=0)
	v := bus.Read(regP1)
	assert.Zero(t, v&0x01, "A must read low (pressed)")
	assert.NotZero(t, v&0x02, "B must read high (not pressed)")

	bus.Write(regP1, 0x20) // select direction buttons (P14=0)
	v = bus.Read(regP1)
	assert.Zero(t, v&0x04, "Up must read low (pressed)")
}

func TestJoypad_RaisesInterruptOnNewPressWhileSelected(t *testing.T) {
	rom := make([]byte, romSize)
	cart, err := LoadCartridge(rom)
	require.NoError(t, err)

	joypad := NewJoypad()
	bus := NewBus(cart, joypad, nil)
	bus.Write(regP1, 0x10) // action buttons selected

	joypad.Press(ButtonStart)
	assert.NotZero(t, bus.Read(regIF)&intJoypad)
}

func TestJoypad_NoInterruptWhenLineNotSelected(t *testing.T) {
	rom := make([]byte, romSize)
	cart, err := LoadCartridge(rom)
	require.NoError(t, err)

	joypad := NewJoypad()
	bus := NewBus(cart, joypad, nil)
	bus.Write(regP1, 0x20) // only direction line selected

	joypad.Press(ButtonStart) // action button, not selected
	assert.Zero(t, bus.Read(regIF)&intJoypad)
}
