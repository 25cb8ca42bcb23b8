package usecase

import (
	"github.com/sirupsen/logrus"

	"go.ngs.io/ncmodel/internal/domain"
)

// Describe logs the dimensions, global attributes and variables of m.
// Variables with data are logged with the array shape and dtype.
func Describe(m *domain.Model, log logrus.FieldLogger) {
	for _, d := range m.Dimensions {
		log.WithFields(logrus.Fields{
			"length":    d.Length,
			"unlimited": d.IsUnlimited,
		}).Infof("dimension %s", d.Name)
	}
	for _, a := range m.GlobalAttributes {
		log.WithFields(attributeFields(a)).Infof("global attribute %s", a.Name)
	}
	for _, v := range m.Variables {
		fields := logrus.Fields{"shape": v.Shape, "type": v.Type}
		if v.Data != nil {
			fields["data_shape"] = v.Data.Shape()
			fields["data_dtype"] = v.Data.DType().String()
		}
		vlog := log.WithField("variable", v.Name)
		vlog.WithFields(fields).Infof("variable %s", v.Name)
		for _, a := range v.Attributes {
			vlog.WithFields(attributeFields(a)).Infof("  attribute %s", a.Name)
		}
	}
}

// DescribeValues logs the data of every variable accepted by keep.
func DescribeValues(m *domain.Model, log logrus.FieldLogger, keep func(*domain.Variable) bool) {
	for _, v := range m.Variables {
		if v.Data == nil || !keep(v) {
			continue
		}
		log.WithField("variable", v.Name).Infof("%v", v.Data.Data())
	}
}

func attributeFields(a domain.Attribute) logrus.Fields {
	f := logrus.Fields{"value": a.Value}
	if a.Type != "" {
		f["type"] = a.Type
	}
	if a.Separator != "" {
		f["separator"] = a.Separator
	}
	return f
}
