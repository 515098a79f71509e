package rawparser

import edkerrors "github.com/standardbeagle/edk2meta/internal/errors"

func (p *Parser) formatError(line int, extra string) error {
	return edkerrors.New(edkerrors.FormatInvalid, p.Path, line, extra)
}

func (p *Parser) unknownSectionError(line int, name string) error {
	return edkerrors.New(edkerrors.FormatUnknown, p.Path, line, name)
}
