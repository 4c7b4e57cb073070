/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package csvimport

import (
	"fmt"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// SchemaPackage is the proto package of the annotation messages.
const SchemaPackage = "taxinomia.csvimport"

// TableSource is the parsed form of a TableSource annotation.
type TableSource struct {
	Name      string
	Delimiter rune
	NoHeader  bool
	Columns   []ColumnSource
}

// Options converts the annotation to ImportOptions.
func (s TableSource) Options() ImportOptions {
	options := DefaultOptions()
	if s.Delimiter != 0 {
		options.Delimiter = s.Delimiter
	}
	options.HasHeader = !s.NoHeader
	for _, col := range s.Columns {
		options.ColumnSources[col.Name] = col
	}
	return options
}

var schema = buildSchema()

func field(name string, number int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String("." + SchemaPackage + "." + typeName)
	}
	return f
}

// buildSchema describes the annotation messages:
//
//	enum ColumnType { COLUMN_TYPE_AUTO = 0; ..._STRING; ..._INT64; ..._FLOAT64; ..._BOOL }
//	message ColumnSource { string name = 1; string display_name = 2; string entity_type = 3; ColumnType type = 4; }
//	message TableSource { string name = 1; repeated ColumnSource columns = 2; string delimiter = 3; bool no_header = 4; }
//	message TableSources { repeated TableSource tables = 1; }
func buildSchema() protoreflect.FileDescriptor {
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	)
	var values []*descriptorpb.EnumValueDescriptorProto
	for i, name := range []string{"AUTO", "STRING", "INT64", "FLOAT64", "BOOL"} {
		values = append(values, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String("COLUMN_TYPE_" + name),
			Number: proto.Int32(int32(i)),
		})
	}
	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("taxinomia/csvimport/annotations.proto"),
		Package: proto.String(SchemaPackage),
		Syntax:  proto.String("proto3"),
		EnumType: []*descriptorpb.EnumDescriptorProto{
			{Name: proto.String("ColumnType"), Value: values},
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("ColumnSource"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("name", 1, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("display_name", 2, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("entity_type", 3, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("type", 4, optional, descriptorpb.FieldDescriptorProto_TYPE_ENUM, "ColumnType"),
				},
			},
			{
				Name: proto.String("TableSource"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("name", 1, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("columns", 2, repeated, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, "ColumnSource"),
					field("delimiter", 3, optional, descriptorpb.FieldDescriptorProto_TYPE_STRING, ""),
					field("no_header", 4, optional, descriptorpb.FieldDescriptorProto_TYPE_BOOL, ""),
				},
			},
			{
				Name: proto.String("TableSources"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("tables", 1, repeated, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, "TableSource"),
				},
			},
		},
	}
	fd, err := protodesc.NewFile(file, new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("csvimport: invalid annotation schema: %v", err))
	}
	return fd
}

// Schema returns a registry holding the annotation messages, for loaders that
// resolve message types by name.
func Schema() *protoregistry.Files {
	files := new(protoregistry.Files)
	if err := files.RegisterFile(schema); err != nil {
		panic(err)
	}
	return files
}

func parse(textproto, message string) (protoreflect.Message, error) {
	desc := schema.Messages().ByName(protoreflect.Name(message))
	msg := dynamicpb.NewMessage(desc)
	if err := prototext.Unmarshal([]byte(textproto), msg); err != nil {
		return nil, fmt.Errorf("failed to parse textproto: %w", err)
	}
	return msg, nil
}

func columnTypeOf(v protoreflect.EnumNumber) ColumnType {
	t := ColumnType(v)
	if t < ColumnTypeAuto || t > ColumnTypeBool {
		return ColumnTypeAuto
	}
	return t
}

func tableSourceOf(msg protoreflect.Message) (TableSource, error) {
	fields := msg.Descriptor().Fields()
	source := TableSource{
		Name:     msg.Get(fields.ByName("name")).String(),
		NoHeader: msg.Get(fields.ByName("no_header")).Bool(),
	}
	if d := []rune(msg.Get(fields.ByName("delimiter")).String()); len(d) > 1 {
		return TableSource{}, fmt.Errorf("table %q: delimiter must be a single character, got %q", source.Name, string(d))
	} else if len(d) == 1 {
		source.Delimiter = d[0]
	}

	list := msg.Get(fields.ByName("columns")).List()
	for i := 0; i < list.Len(); i++ {
		col := list.Get(i).Message()
		cf := col.Descriptor().Fields()
		source.Columns = append(source.Columns, ColumnSource{
			Name:        col.Get(cf.ByName("name")).String(),
			DisplayName: col.Get(cf.ByName("display_name")).String(),
			EntityType:  col.Get(cf.ByName("entity_type")).String(),
			Type:        columnTypeOf(col.Get(cf.ByName("type")).Enum()),
		})
	}
	return source, nil
}

// ParseTableSource parses a textproto TableSource.
func ParseTableSource(textproto string) (TableSource, error) {
	msg, err := parse(textproto, "TableSource")
	if err != nil {
		return TableSource{}, err
	}
	return tableSourceOf(msg)
}

// ParseTableSources parses a textproto TableSources message.
func ParseTableSources(textproto string) ([]TableSource, error) {
	msg, err := parse(textproto, "TableSources")
	if err != nil {
		return nil, err
	}
	list := msg.Get(msg.Descriptor().Fields().ByName("tables")).List()
	sources := make([]TableSource, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		source, err := tableSourceOf(list.Get(i).Message())
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, nil
}

// OptionsFromTextproto creates ImportOptions from a textproto TableSource.
func OptionsFromTextproto(textproto string) (ImportOptions, error) {
	source, err := ParseTableSource(textproto)
	if err != nil {
		return ImportOptions{}, err
	}
	return source.Options(), nil
}

// OptionsMapFromTextproto creates a map of table name to ImportOptions from a
// textproto containing multiple table sources.
func OptionsMapFromTextproto(textproto string) (map[string]ImportOptions, error) {
	sources, err := ParseTableSources(textproto)
	if err != nil {
		return nil, err
	}
	result := make(map[string]ImportOptions, len(sources))
	for _, source := range sources {
		result[source.Name] = source.Options()
	}
	return result, nil
}
