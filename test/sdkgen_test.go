package test

import (
	"testing"

	"github.com/koskimas/sdkgen/internal/cmd"
	assert "github.com/stretchr/testify/require"
)

func TestGeneratePetstore(t *testing.T) {
	dir := copyProject(t, "petstore")

	err := cmd.Run(cmd.Settings{
		WorkingDir: dir,
		Verbose:    true,
	})
	assert.NoError(t, err)

	pet := readGenerated(t, dir, "gen/pets/Pet.go")
	assert.Contains(t, pet, "Code generated by sdkgen. DO NOT EDIT.")
	assert.Contains(t, pet, "package pets")
	assert.Contains(t, pet, "type Pet struct {")
	assert.Contains(t, pet, "type PetKind interface {")
	assert.Contains(t, pet, "func EncodePet(o *codec.Object, v PetKind) error")
	assert.Contains(t, pet, "func DecodePet(o *codec.Object) (PetKind, error)")
	assert.Contains(t, pet, `case "dog":`)

	dog := readGenerated(t, dir, "gen/pets/Dog.go")
	assert.Contains(t, dog, `o.SetString(codec.TagField, "dog")`)
	assert.Contains(t, dog, "base, err := NewPet(name, species, age, status, tags)")

	status := readGenerated(t, dir, "gen/pets/Status.go")
	assert.Contains(t, status, "var statusAvailableInstance = &StatusAvailable{}")
	assert.Contains(t, status, "return NewStatusUnknown(), nil")

	// Namespace docs become the package comment.
	doc := readGenerated(t, dir, "gen/pets/doc.go")
	assert.Contains(t, doc, "Package pets : Pets and their adoption status.")

	// Cross-namespace references are package qualified.
	owner := readGenerated(t, dir, "gen/owners/Owner.go")
	assert.Contains(t, owner, `"example.com/petstore/gen/pets"`)
	assert.Contains(t, owner, "Pets []pets.PetKind")
	assert.Contains(t, owner, "pets.DecodePet(obj)")
}

func TestGenerateMissingConfig(t *testing.T) {
	err := cmd.Run(cmd.Settings{
		WorkingDir: t.TempDir(),
	})
	assert.ErrorContains(t, err, "failed to read config file")
}
