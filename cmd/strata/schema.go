package main

import "github.com/strataconf/strata/internal/schema"

// projectSchema declares the built-in demo schema: a data-science project
// configuration with a data record, a model record, and an output directory
// prepared on demand.
func projectSchema() (*schema.Schema, error) {
	data, err := schema.New(
		schema.Field{
			Name: "data_format", Kind: schema.KindEnum, Required: true,
			Constraint: schema.OneOf{Values: []string{"DB", "SAP"}},
		},
		schema.Field{
			Name: "input_path", Kind: schema.KindPath, Required: true,
			Constraint: schema.PathExists{},
		},
		schema.Field{Name: "start_date", Kind: schema.KindDate, Required: true},
		schema.Field{
			Name: "window", Kind: schema.KindInt, Default: 3,
			Constraint: schema.Range{Min: 1, Max: 365},
		},
	)
	if err != nil {
		return nil, err
	}

	model, err := schema.New(
		schema.Field{Name: "num_estimators", Kind: schema.KindInt, Default: 100},
		schema.Field{
			Name: "max_depth", Kind: schema.KindInt, Required: true,
			Constraint: schema.Range{Min: 1, Max: 64},
		},
	)
	if err != nil {
		return nil, err
	}

	return schema.New(
		schema.Field{Name: "data", Kind: schema.KindRecord, Record: data},
		schema.Field{Name: "model", Kind: schema.KindRecord, Record: model},
		schema.Field{
			Name: "output_dir", Kind: schema.KindPath, Default: "outputs/latest",
			Before: []schema.BeforeHook{schema.EnsureDir()},
		},
	)
}
