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

// Package protoloader loads textproto and binary proto datasets whose schema
// is only known at runtime. A message with a linear chain of nested repeated
// messages is flattened into one table row per leaf.
package protoloader

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/tables"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

var ErrNoRows = errors.New("no rows extracted")

// Loader resolves message types from a pre-populated registry.
type Loader struct {
	registry *protoregistry.Files
}

func NewLoader(registry *protoregistry.Files) *Loader {
	return &Loader{registry: registry}
}

// LoadDescriptorSet reads a binary FileDescriptorSet, as written by
// protoc --descriptor_set_out --include_imports, into a registry.
func LoadDescriptorSet(path string) (*protoregistry.Files, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor set: %w", err)
	}
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor set: %w", err)
	}
	files, err := protodesc.NewFiles(set)
	if err != nil {
		return nil, fmt.Errorf("invalid descriptor set: %w", err)
	}
	return files, nil
}

func (l *Loader) messageDescriptor(messageName string) (protoreflect.MessageDescriptor, error) {
	desc, err := l.registry.FindDescriptorByName(protoreflect.FullName(messageName))
	if err != nil {
		return nil, fmt.Errorf("message %q not found in registry: %w", messageName, err)
	}
	msgDesc, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%q is not a message type", messageName)
	}
	return msgDesc, nil
}

// ParseTextproto parses textproto content into a dynamic message.
func (l *Loader) ParseTextproto(data []byte, messageName string) (protoreflect.Message, error) {
	msgDesc, err := l.messageDescriptor(messageName)
	if err != nil {
		return nil, err
	}
	msg := dynamicpb.NewMessage(msgDesc)
	opts := prototext.UnmarshalOptions{Resolver: l}
	if err := opts.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("failed to parse textproto: %w", err)
	}
	return msg, nil
}

// ParseBinary parses wire-format content into a dynamic message.
func (l *Loader) ParseBinary(data []byte, messageName string) (protoreflect.Message, error) {
	msgDesc, err := l.messageDescriptor(messageName)
	if err != nil {
		return nil, err
	}
	msg := dynamicpb.NewMessage(msgDesc)
	opts := proto.UnmarshalOptions{Resolver: l}
	if err := opts.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("failed to parse binary proto: %w", err)
	}
	return msg, nil
}

// FindMessageByName implements protoregistry.MessageTypeResolver
func (l *Loader) FindMessageByName(name protoreflect.FullName) (protoreflect.MessageType, error) {
	msgDesc, err := l.messageDescriptor(string(name))
	if err != nil {
		return nil, err
	}
	return dynamicpb.NewMessageType(msgDesc), nil
}

// FindMessageByURL implements protoregistry.MessageTypeResolver
func (l *Loader) FindMessageByURL(url string) (protoreflect.MessageType, error) {
	name := url
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		name = url[i+1:]
	}
	return l.FindMessageByName(protoreflect.FullName(name))
}

// FindExtensionByName implements protoregistry.ExtensionTypeResolver
func (l *Loader) FindExtensionByName(name protoreflect.FullName) (protoreflect.ExtensionType, error) {
	return nil, protoregistry.NotFound
}

// FindExtensionByNumber implements protoregistry.ExtensionTypeResolver
func (l *Loader) FindExtensionByNumber(message protoreflect.FullName, field protoreflect.FieldNumber) (protoreflect.ExtensionType, error) {
	return nil, protoregistry.NotFound
}

// HierarchyLevel is one message in a linear chain of nested repeated messages.
type HierarchyLevel struct {
	Message protoreflect.MessageDescriptor
	// Child is the repeated message field leading to the next level, nil at the leaf.
	Child protoreflect.FieldDescriptor
	// Scalars are the singular non-message fields that become columns.
	Scalars []protoreflect.FieldDescriptor
}

// FindLinearHierarchy follows the first repeated message field of every level.
// Later repeated message fields, repeated scalars and singular messages are
// not flattened.
func FindLinearHierarchy(msgDesc protoreflect.MessageDescriptor) []HierarchyLevel {
	var levels []HierarchyLevel
	seen := make(map[protoreflect.FullName]bool)
	for current := msgDesc; current != nil && !seen[current.FullName()]; {
		seen[current.FullName()] = true
		level := HierarchyLevel{Message: current}
		var next protoreflect.MessageDescriptor

		fields := current.Fields()
		for i := 0; i < fields.Len(); i++ {
			fd := fields.Get(i)
			switch {
			case fd.IsMap():
			case fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind:
				if fd.IsList() && level.Child == nil {
					level.Child = fd
					next = fd.Message()
				}
			case !fd.IsList():
				level.Scalars = append(level.Scalars, fd)
			}
		}
		levels = append(levels, level)
		current = next
	}
	return levels
}

// column is one output column, bound to a scalar field at a hierarchy level.
type column struct {
	name  string
	level int
	field protoreflect.FieldDescriptor
}

// RowBuilder accumulates denormalized rows from a hierarchical message.
type RowBuilder struct {
	columns []column
	rows    [][]string
	current []string
}

// newRowBuilder names a column after its field, qualified by the message
// name when a shallower level already uses the field name.
func newRowBuilder(hierarchy []HierarchyLevel) *RowBuilder {
	rb := &RowBuilder{}
	used := make(map[string]bool)
	for i, level := range hierarchy {
		for _, fd := range level.Scalars {
			name := string(fd.Name())
			if used[name] {
				name = string(level.Message.Name()) + "." + name
			}
			used[name] = true
			rb.columns = append(rb.columns, column{name: name, level: i, field: fd})
		}
	}
	rb.current = make([]string, len(rb.columns))
	return rb
}

// Columns returns the output column names in order.
func (rb *RowBuilder) Columns() []string {
	names := make([]string, len(rb.columns))
	for i, c := range rb.columns {
		names[i] = c.name
	}
	return names
}

// Rows returns the extracted rows.
func (rb *RowBuilder) Rows() [][]string {
	return rb.rows
}

func (rb *RowBuilder) clearFromLevel(level int) {
	for i, c := range rb.columns {
		if c.level >= level {
			rb.current[i] = ""
		}
	}
}

func (rb *RowBuilder) set(level int, msg protoreflect.Message) {
	for i, c := range rb.columns {
		if c.level == level {
			rb.current[i] = formatValue(msg.Get(c.field), c.field)
		}
	}
}

func (rb *RowBuilder) emitRow() {
	rb.rows = append(rb.rows, append([]string(nil), rb.current...))
}

// ExtractRows walks a message and emits one row per leaf. A message whose
// child list is empty still yields a row with empty child columns.
func ExtractRows(msg protoreflect.Message, hierarchy []HierarchyLevel) *RowBuilder {
	rb := newRowBuilder(hierarchy)
	walkHierarchy(msg, hierarchy, 0, rb)
	return rb
}

func walkHierarchy(msg protoreflect.Message, hierarchy []HierarchyLevel, depth int, rb *RowBuilder) {
	level := hierarchy[depth]
	rb.set(depth, msg)

	if level.Child == nil || depth == len(hierarchy)-1 {
		rb.emitRow()
		return
	}

	list := msg.Get(level.Child).List()
	if list.Len() == 0 {
		rb.clearFromLevel(depth + 1)
		rb.emitRow()
		return
	}
	for i := 0; i < list.Len(); i++ {
		rb.clearFromLevel(depth + 1)
		walkHierarchy(list.Get(i).Message(), hierarchy, depth+1, rb)
	}
}

func formatValue(val protoreflect.Value, fd protoreflect.FieldDescriptor) string {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return strconv.FormatBool(val.Bool())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return strconv.FormatInt(val.Int(), 10)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return strconv.FormatUint(val.Uint(), 10)
	case protoreflect.FloatKind:
		return strconv.FormatFloat(val.Float(), 'g', -1, 32)
	case protoreflect.DoubleKind:
		return strconv.FormatFloat(val.Float(), 'g', -1, 64)
	case protoreflect.BytesKind:
		return string(val.Bytes())
	case protoreflect.EnumKind:
		if v := fd.Enum().Values().ByNumber(val.Enum()); v != nil {
			return string(v.Name())
		}
		return strconv.Itoa(int(val.Enum()))
	default:
		return val.String()
	}
}

// newColumn picks the column kind for a field. Unsigned 64-bit fields may
// not fit an int64 and are kept as strings.
func newColumn(name string, fd protoreflect.FieldDescriptor) columns.IDataColumn {
	def := columns.NewColumnDef(name, name, "")
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return columns.NewBoolColumn(def)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind,
		protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return columns.NewInt64Column(def)
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return columns.NewFloat64Column(def)
	default:
		return columns.NewStringColumn(def)
	}
}

// CreateDataTable builds a table from extracted rows. Empty cells, which come
// from parents without children, import as the zero value of numeric columns.
func CreateDataTable(rb *RowBuilder) (*tables.DataTable, error) {
	table := tables.NewDataTable()
	for i, c := range rb.columns {
		col := newColumn(c.name, c.field)
		values := make([]string, len(rb.rows))
		for r, row := range rb.rows {
			values[r] = row[i]
			if values[r] == "" && col.Kind() != columns.KindString {
				values[r] = zeroValue(col.Kind())
			}
		}
		if err := col.InsertStrings(0, values); err != nil {
			return nil, err
		}
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func zeroValue(kind columns.Kind) string {
	if kind == columns.KindBool {
		return "false"
	}
	return "0"
}

func (l *Loader) toTable(msg protoreflect.Message) (*tables.DataTable, error) {
	rb := ExtractRows(msg, FindLinearHierarchy(msg.Descriptor()))
	if len(rb.rows) == 0 || len(rb.columns) == 0 {
		return nil, ErrNoRows
	}
	return CreateDataTable(rb)
}

// LoadTextprotoAsTable loads a textproto file and returns a denormalized
// DataTable. messageName is fully qualified, e.g. "mypackage.Customers".
func (l *Loader) LoadTextprotoAsTable(path, messageName string) (*tables.DataTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read textproto file: %w", err)
	}
	msg, err := l.ParseTextproto(data, messageName)
	if err != nil {
		return nil, err
	}
	return l.toTable(msg)
}

// LoadBinaryAsTable is LoadTextprotoAsTable for wire-format files.
func (l *Loader) LoadBinaryAsTable(path, messageName string) (*tables.DataTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proto file: %w", err)
	}
	msg, err := l.ParseBinary(data, messageName)
	if err != nil {
		return nil, err
	}
	return l.toTable(msg)
}

// GetRegisteredMessages returns the top-level message names in the registry.
func (l *Loader) GetRegisteredMessages() []string {
	var messages []string
	l.registry.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		msgs := fd.Messages()
		for i := 0; i < msgs.Len(); i++ {
			messages = append(messages, string(msgs.Get(i).FullName()))
		}
		return true
	})
	return messages
}
