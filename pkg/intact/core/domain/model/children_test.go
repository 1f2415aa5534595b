package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
)

func TestCvRef_PrefersACThenIdentifiers(t *testing.T) {
	assert.Equal(t, "", model.CvRef(nil))
	assert.Equal(t, "EBI-1", model.CvRef(&model.CvTerm{AC: "EBI-1", MIIdentifier: "MI:0326"}))
	assert.Equal(t, "MI:0326", model.CvRef(&model.CvTerm{MIIdentifier: "MI:0326", MODIdentifier: "MOD:1"}))
	assert.Equal(t, "MOD:1", model.CvRef(&model.CvTerm{MODIdentifier: "MOD:1"}))
	assert.Equal(t, "PAR:2", model.CvRef(&model.CvTerm{PARIdentifier: "PAR:2"}))
	assert.Equal(t, "topic/comment", model.CvRef(&model.CvTerm{ShortLabel: "comment", ObjClass: "topic"}))
}

func TestXref_IsIdentity(t *testing.T) {
	identity := &model.Xref{Qualifier: &model.CvTerm{MIIdentifier: model.IdentityMI}}
	byLabel := &model.Xref{Qualifier: &model.CvTerm{ShortLabel: model.IdentityLabel}}
	secondary := &model.Xref{Qualifier: &model.CvTerm{MIIdentifier: "MI:0360", ShortLabel: "identity"}}
	unqualified := &model.Xref{}

	assert.True(t, identity.IsIdentity())
	assert.True(t, byLabel.IsIdentity())
	assert.False(t, secondary.IsIdentity())
	assert.False(t, unqualified.IsIdentity())

	assert.Equal(t, []*model.Xref{identity, byLabel},
		model.IdentityXrefs([]*model.Xref{identity, secondary, nil, byLabel, unqualified}))
}

func TestNaturalKeys(t *testing.T) {
	db := &model.CvTerm{AC: "EBI-10"}
	a := &model.Xref{Database: db, PrimaryID: "P12345", Qualifier: &model.CvTerm{AC: "EBI-11"}}
	b := &model.Xref{Database: db, PrimaryID: "P12345", Qualifier: &model.CvTerm{AC: "EBI-11"}, SecondaryID: "ignored"}
	assert.Equal(t, model.XrefKey(a), model.XrefKey(b))

	r1 := &model.Range{Start: 1, End: 10}
	r2 := &model.Range{Start: 1, End: 11}
	assert.NotEqual(t, model.RangeKey(r1), model.RangeKey(r2))

	p := &model.Parameter{Type: db, Factor: 1.5, Base: 10, Exponent: -3}
	assert.Equal(t, "EBI-10||1.5|10|-3", model.ParameterKey(p))
}
