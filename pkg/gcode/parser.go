// Instruction parser
//
// Consumes the raw file line-by-line, classifies each line against the
// dialect table, and tracks the running machine Position. Lines that
// fail to classify become passthrough commands and are reported to the
// unsupported-command sink; parsing itself is never fatal.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gcodeopt/pkg/errors"
	"gcodeopt/pkg/log"
	"gcodeopt/pkg/pool"
)

// Parser turns raw lines into Commands while tracking machine state.
// A Parser is not safe for concurrent use; each input stream gets its
// own instance.
type Parser struct {
	dialect Dialect
	sink    UnsupportedSink
	log     *log.Logger

	pos   Position
	stats Stats
	line  int
}

// Option configures a Parser.
type Option func(*Parser)

// WithDialect replaces the default instruction table.
func WithDialect(d Dialect) Option {
	return func(p *Parser) { p.dialect = d }
}

// WithSink sets the unsupported-command sink.
func WithSink(s UnsupportedSink) Option {
	return func(p *Parser) { p.sink = s }
}

// WithLogger sets the parser's logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Parser) { p.log = l }
}

// NewParser creates a parser with the default dialect, a no-op sink,
// and the package logger.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		dialect: DefaultDialect(),
		sink:    NopSink{},
		log:     log.GetLogger("parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Position returns the machine position after the last parsed command.
func (p *Parser) Position() Position {
	return p.pos
}

// Stats returns the statistics accumulated so far.
func (p *Parser) Stats() Stats {
	return p.stats
}

// Parse consumes the whole stream and returns the ordered command list.
// The only error condition is a failure of the underlying reader.
func (p *Parser) Parse(r io.Reader) ([]Command, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cmds []Command
	for scanner.Scan() {
		cmds = append(cmds, p.ParseLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return cmds, nil
}

// ParseLine classifies one raw line and advances the machine state.
func (p *Parser) ParseLine(raw string) Command {
	p.line++

	// Strip the comment for classification; Raw keeps the full line.
	code := raw
	if idx := strings.IndexByte(code, ';'); idx >= 0 {
		code = code[:idx]
	}
	code = strings.TrimSpace(code)

	cmd := Command{Raw: raw, Line: p.line, Start: p.pos}

	if code == "" {
		cmd.Kind = KindComment
		cmd.End = p.pos
		return cmd
	}

	fields := strings.Fields(code)
	cmd.Word = strings.ToUpper(fields[0])

	switch p.dialect.Lookup(cmd.Word) {
	case ActionMove:
		p.parseMove(&cmd, fields[1:])

	case ActionHome:
		p.parseHome(&cmd, fields[1:])

	case ActionSetPosition:
		p.parseSetPosition(&cmd, fields[1:])

	case ActionPositioningAbsolute:
		p.setPositioning(&cmd, ModeAbsolute)
	case ActionPositioningRelative:
		p.setPositioning(&cmd, ModeRelative)

	case ActionExtruderAbsolute:
		p.setExtruder(&cmd, ModeAbsolute)
	case ActionExtruderRelative:
		p.setExtruder(&cmd, ModeRelative)

	case ActionUnitsMillimeters:
		p.setUnits(&cmd, UnitsMillimeters)
	case ActionUnitsInches:
		p.setUnits(&cmd, UnitsInches)

	case ActionPassthrough:
		cmd.Kind = KindState
		cmd.End = p.pos

	default:
		cmd.Kind = KindUnknown
		cmd.End = p.pos
		p.stats.Unknown++
		p.sink.Record(p.line, raw)
		p.log.WithError(errors.ParseError(p.line, raw)).Warn("passing %s through unmodified", cmd.Word)
	}

	return cmd
}

// parseArgs fills the command's argument fields from letter-prefixed
// words ("X12.5", "E0.04").
func (p *Parser) parseArgs(cmd *Command, args []string) {
	seen := pool.GetArgsMap()
	defer pool.PutArgsMap(seen)

	for _, arg := range args {
		if len(arg) < 2 {
			continue
		}
		letter := arg[0] &^ 0x20 // uppercase
		if _, dup := seen[letter]; dup {
			continue
		}
		seen[letter] = arg[1:]
	}

	for letter, text := range seen {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.log.Warn("bad %c argument %q at line %d", letter, text, p.line)
			continue
		}
		switch letter {
		case 'X':
			cmd.X, cmd.HasX = v, true
		case 'Y':
			cmd.Y, cmd.HasY = v, true
		case 'Z':
			cmd.Z, cmd.HasZ = v, true
		case 'E':
			cmd.E, cmd.HasE = v, true
		case 'F':
			cmd.Feed, cmd.HasF = v, true
		}
	}
}

// parseMove handles G0/G1.
func (p *Parser) parseMove(cmd *Command, args []string) {
	p.parseArgs(cmd, args)

	end := p.pos
	relative := p.pos.Positioning == ModeRelative
	if cmd.HasX {
		end.X = applyCoord(p.pos.X, cmd.X, relative)
	}
	if cmd.HasY {
		end.Y = applyCoord(p.pos.Y, cmd.Y, relative)
	}
	if cmd.HasZ {
		end.Z = applyCoord(p.pos.Z, cmd.Z, relative)
	}
	if cmd.HasF && cmd.Feed > 0 {
		end.Feed = cmd.Feed
	}

	if cmd.HasE {
		if p.extruderRelative() {
			cmd.EDelta = cmd.E
		} else {
			cmd.EDelta = cmd.E - p.pos.E
		}
		end.E = p.pos.E + cmd.EDelta
	}

	if cmd.EDelta > 0 {
		cmd.Kind = KindMoveExtrude
		p.stats.ExtrudeMoves++
		p.stats.ExtrusionDistance += p.pos.DistanceTo(end)
	} else {
		cmd.Kind = KindMoveTravel
		p.stats.TravelMoves++
		p.stats.TravelDistance += p.pos.DistanceTo(end)
	}

	cmd.End = end
	p.pos = end
}

// parseHome handles G28: all axes return to the origin, with explicit
// arguments overriding.
func (p *Parser) parseHome(cmd *Command, args []string) {
	p.parseArgs(cmd, args)

	end := p.pos
	end.X, end.Y, end.Z = 0, 0, 0
	if cmd.HasX {
		end.X = cmd.X
	}
	if cmd.HasY {
		end.Y = cmd.Y
	}
	if cmd.HasZ {
		end.Z = cmd.Z
	}

	cmd.Kind = KindHome
	p.stats.TravelDistance += p.pos.DistanceTo(end)
	cmd.End = end
	p.pos = end
}

// parseSetPosition handles G92: named axes are redefined without motion.
func (p *Parser) parseSetPosition(cmd *Command, args []string) {
	p.parseArgs(cmd, args)

	end := p.pos
	if cmd.HasX {
		end.X = cmd.X
	}
	if cmd.HasY {
		end.Y = cmd.Y
	}
	if cmd.HasZ {
		end.Z = cmd.Z
	}
	if cmd.HasE {
		end.E = cmd.E
	}

	cmd.Kind = KindSetPosition
	cmd.End = end
	p.pos = end
}

func (p *Parser) setPositioning(cmd *Command, mode Mode) {
	if p.pos.Positioning != ModeNotSet {
		p.log.Warn("%s at line %d after positioning mode was already set", cmd.Word, p.line)
	}
	p.pos.Positioning = mode
	cmd.Kind = KindState
	cmd.End = p.pos
}

func (p *Parser) setExtruder(cmd *Command, mode Mode) {
	if p.pos.Extruder != ModeNotSet {
		p.log.Warn("%s at line %d after extruder mode was already set", cmd.Word, p.line)
	}
	p.pos.Extruder = mode
	cmd.Kind = KindState
	cmd.End = p.pos
}

func (p *Parser) setUnits(cmd *Command, units Units) {
	if p.pos.Units != UnitsNotSet {
		p.log.Warn("%s at line %d after units mode was already set", cmd.Word, p.line)
	}
	p.pos.Units = units
	p.stats.Units = units
	cmd.Kind = KindState
	cmd.End = p.pos
}

// extruderRelative resolves the effective extrusion mode: the explicit
// extruder mode wins, then the positioning mode, then absolute.
func (p *Parser) extruderRelative() bool {
	if p.pos.Extruder != ModeNotSet {
		return p.pos.Extruder == ModeRelative
	}
	return p.pos.Positioning == ModeRelative
}

func applyCoord(current, value float64, relative bool) float64 {
	if relative {
		return current + value
	}
	return value
}
