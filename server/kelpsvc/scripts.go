package kelpsvc

import (
	"context"
	"errors"

	"github.com/dekarrin/kelp/internal/lang"
	"github.com/dekarrin/kelp/server/dao"
	"github.com/dekarrin/kelp/server/serr"
	"github.com/google/uuid"
)

// RunResult is the outcome of executing a script's source.
type RunResult struct {
	// Output is the formatted value the script's last top-level statement
	// evaluated to.
	Output string

	// Error is set if the script failed to parse. Run failures from the
	// evaluator itself are not modeled; eval.go does not return errors for
	// well-parsed programs.
	Error string
}

// GetAllScripts returns every script currently in persistence.
func (svc Service) GetAllScripts(ctx context.Context) ([]dao.Script, error) {
	scripts, err := svc.DB.Scripts().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return scripts, nil
}

// GetAllScriptsByUser returns every script owned by the user with the given
// ID.
func (svc Service) GetAllScriptsByUser(ctx context.Context, userID string) ([]dao.Script, error) {
	uuidID, err := uuid.Parse(userID)
	if err != nil {
		return nil, serr.New("user ID is not valid", serr.ErrBadArgument)
	}

	scripts, err := svc.DB.Scripts().GetAllByUser(ctx, uuidID)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return scripts, nil
}

// GetScript returns the script with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no script with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if
// there is an issue with one of the arguments, it will match
// serr.ErrBadArgument.
func (svc Service) GetScript(ctx context.Context, id string) (dao.Script, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Script{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	script, err := svc.DB.Scripts().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Script{}, serr.ErrNotFound
		}
		return dao.Script{}, serr.WrapDB("could not get script", err)
	}

	return script, nil
}

// CreateScript parses source to confirm it is syntactically valid, then
// creates a new script owned by ownerID with the given name and source.
// Returns the newly-created script, with its parsed-program cache already
// populated.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If source does not parse, it
// will match serr.ErrBadArgument. If the error occured due to an unexpected
// problem with the DB, it will match serr.ErrDB.
func (svc Service) CreateScript(ctx context.Context, ownerID, name, source string) (dao.Script, error) {
	if name == "" {
		return dao.Script{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	uuidOwner, err := uuid.Parse(ownerID)
	if err != nil {
		return dao.Script{}, serr.New("owner ID is not valid", serr.ErrBadArgument)
	}

	cache, err := compileCache(source)
	if err != nil {
		return dao.Script{}, serr.New("script does not parse: "+err.Error(), err, serr.ErrBadArgument)
	}

	newScript := dao.Script{
		UserID:       uuidOwner,
		Name:         name,
		Source:       source,
		ProgramCache: cache,
	}

	script, err := svc.DB.Scripts().Create(ctx, newScript)
	if err != nil {
		return dao.Script{}, serr.WrapDB("could not create script", err)
	}

	return script, nil
}

// UpdateScript sets the name and source of the script with the given ID. If
// the source differs from what is already stored, it is re-parsed and the
// program cache refreshed. Returns the updated script.
func (svc Service) UpdateScript(ctx context.Context, id, name, source string) (dao.Script, error) {
	if name == "" {
		return dao.Script{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Script{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	existing, err := svc.DB.Scripts().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Script{}, serr.New("script not found", serr.ErrNotFound)
		}
		return dao.Script{}, serr.WrapDB("", err)
	}

	cache := existing.ProgramCache
	if source != existing.Source {
		cache, err = compileCache(source)
		if err != nil {
			return dao.Script{}, serr.New("script does not parse: "+err.Error(), err, serr.ErrBadArgument)
		}
	}

	existing.Name = name
	existing.Source = source
	existing.ProgramCache = cache

	updated, err := svc.DB.Scripts().Update(ctx, uuidID, existing)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Script{}, serr.New("script not found", serr.ErrNotFound)
		}
		return dao.Script{}, serr.WrapDB("", err)
	}

	return updated, nil
}

// DeleteScript deletes the script with the given ID. Returns the deleted
// script just after it was deleted.
func (svc Service) DeleteScript(ctx context.Context, id string) (dao.Script, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Script{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	script, err := svc.DB.Scripts().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Script{}, serr.ErrNotFound
		}
		return dao.Script{}, serr.WrapDB("could not delete script", err)
	}

	return script, nil
}

// RunScript loads the script with the given ID, using its cached parsed
// program when present, and executes it on a fresh Runtime. Each call gets
// its own Runtime so concurrent runs of the same or different scripts never
// share evaluator state.
func (svc Service) RunScript(ctx context.Context, id string) (RunResult, error) {
	script, err := svc.GetScript(ctx, id)
	if err != nil {
		return RunResult{}, err
	}

	program, err := loadProgram(script)
	if err != nil {
		return RunResult{Error: err.Error()}, nil
	}

	rt := lang.NewRuntime()
	rt.RegisterDefaults()
	result := rt.Run(program)

	return RunResult{Output: lang.FormatPrint(result)}, nil
}

func loadProgram(script dao.Script) (lang.Program, error) {
	if len(script.ProgramCache) > 0 {
		var program lang.Program
		if err := program.UnmarshalBinary(script.ProgramCache); err == nil {
			return program, nil
		}
	}
	return lang.Parse(script.Source)
}

func compileCache(source string) ([]byte, error) {
	program, err := lang.Parse(source)
	if err != nil {
		return nil, err
	}
	return program.MarshalBinary()
}
