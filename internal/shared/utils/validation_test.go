package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("widget-1700000000000", "id", true))
	assert.NoError(t, ValidateID("", "id", false))
	assert.Error(t, ValidateID("", "id", true))
	assert.Error(t, ValidateID("bad id", "id", true))
	assert.Error(t, ValidateID(strings.Repeat("a", MaxIDLength+1), "id", true))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Clock", "name"))
	assert.Error(t, ValidateName("", "name"))
	assert.Error(t, ValidateName("   ", "name"))
	assert.Error(t, ValidateName("a\x00b", "name"))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("widgets/clock/index.html", "path", true))
	assert.Error(t, ValidatePath("widgets/../secret.html", "path", true))
	assert.Error(t, ValidatePath(`widgets\..\secret.html`, "path", true))
	assert.Error(t, ValidatePath("", "path", true))
}

func TestValidateVideoID(t *testing.T) {
	assert.NoError(t, ValidateVideoID("dQw4w9WgXcQ"))
	assert.Error(t, ValidateVideoID("x"))
	assert.Error(t, ValidateVideoID("not a video"))
}

func TestValidateGeometry(t *testing.T) {
	assert.NoError(t, ValidateCoordinate(-20, "x"))
	assert.Error(t, ValidateCoordinate(MaxCoordinate+1, "x"))
	assert.NoError(t, ValidateDimension(250, "width"))
	assert.Error(t, ValidateDimension(0, "width"))
}
