package insurance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() Profile {
	return Profile{
		Age:      30,
		Sex:      SexMale,
		BMI:      25.0,
		Children: 0,
		Smoker:   SmokerNo,
		Region:   "southeast",
	}
}

func TestProfileValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Profile)
		field  string
		reason string
	}{
		{"age below minimum", func(p *Profile) { p.Age = 17 }, "age", "below minimum"},
		{"age above maximum", func(p *Profile) { p.Age = 66 }, "age", "above maximum"},
		{"sex unrecognized", func(p *Profile) { p.Sex = "other" }, "sex", "unrecognized value"},
		{"bmi below minimum", func(p *Profile) { p.BMI = 10 }, "bmi", "below minimum"},
		{"bmi above maximum", func(p *Profile) { p.BMI = 60 }, "bmi", "above maximum"},
		{"children below minimum", func(p *Profile) { p.Children = -1 }, "children", "below minimum"},
		{"children above maximum", func(p *Profile) { p.Children = 6 }, "children", "above maximum"},
		{"smoker unrecognized", func(p *Profile) { p.Smoker = "sometimes" }, "smoker", "unrecognized value"},
		{"region unrecognized", func(p *Profile) { p.Region = "midwest" }, "region", "unrecognized value"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProfile()
			tc.mutate(&p)

			err := p.Validate()
			require.NotNil(t, err)
			assert.Equal(t, CodeInvalidProfile, err.Code)
			assert.Equal(t, tc.field, err.Field)
			assert.Equal(t, tc.reason, err.Reason)
		})
	}
}

func TestProfileValidateAcceptsDomainBounds(t *testing.T) {
	for _, p := range []Profile{
		{Age: 18, Sex: SexFemale, BMI: 15.0, Children: 0, Smoker: SmokerNo, Region: "northwest"},
		{Age: 65, Sex: SexMale, BMI: 55.0, Children: 5, Smoker: SmokerYes, Region: "northeast"},
		validProfile(),
	} {
		assert.Nil(t, p.Validate(), "profile %+v", p)
	}
}

func TestFeatureRowUsesTrainingColumnNames(t *testing.T) {
	row := validProfile().FeatureRow()

	require.Len(t, row, 6)
	assert.Equal(t, 30, row["age"])
	assert.Equal(t, "male", row["sex"])
	assert.Equal(t, 25.0, row["bmi"])
	assert.Equal(t, 0, row["children"])
	assert.Equal(t, "no", row["smoker"])
	assert.Equal(t, "southeast", row["region"])
}
