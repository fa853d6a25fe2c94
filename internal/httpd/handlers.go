package httpd

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/voxauth/voxauth/pkg/audio/preprocess"
	"github.com/voxauth/voxauth/pkg/voiceid"
)

// nameForm validates the user name field shared by register and verify.
type nameForm struct {
	Name string `validate:"required,min=1,max=64"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	cleanup, err := s.parseUpload(w, r)
	if err != nil {
		respondErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	form := nameForm{Name: r.FormValue("name")}
	if err := s.validate.Struct(form); err != nil {
		respondErrorMsg(w, http.StatusBadRequest, "name is required (max 64 characters)")
		return
	}

	files := r.MultipartForm.File["samples"]
	if len(files) == 0 {
		respondErrorMsg(w, http.StatusBadRequest,
			fmt.Sprintf("between %d and %d audio samples are required",
				voiceid.MinEnrollSamples, voiceid.MaxEnrollSamples))
		return
	}

	paths, dir, err := s.saveUploads(files)
	if dir != "" {
		defer os.RemoveAll(dir)
	}
	if err != nil {
		respondErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.svc.Register(r.Context(), form.Name, paths)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondCreated(w, result)
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := s.singleUpload(w, r)
	if err != nil {
		respondErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	// Optional per-request overrides of the configured operating point.
	threshold := s.svc.Options().Threshold
	method := s.svc.Options().Method
	if v := r.FormValue("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 || t > 1 {
			respondErrorMsg(w, http.StatusBadRequest, "threshold must be a number in [0, 1]")
			return
		}
		threshold = t
	}
	if v := r.FormValue("method"); v != "" {
		m := voiceid.Method(v)
		if !m.Valid() {
			respondErrorMsg(w, http.StatusBadRequest,
				fmt.Sprintf("unsupported method %q (want %s or %s)", v, voiceid.MethodCosine, voiceid.MethodEuclidean))
			return
		}
		method = m
	}

	result, err := s.svc.IdentifyWith(r.Context(), path, threshold, method)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := s.singleUpload(w, r)
	if err != nil {
		respondErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	form := nameForm{Name: r.FormValue("name")}
	if err := s.validate.Struct(form); err != nil {
		respondErrorMsg(w, http.StatusBadRequest, "name is required (max 64 characters)")
		return
	}

	result, err := s.svc.Verify(r.Context(), form.Name, path)
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondOK(w, result)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	respondOK(w, map[string]any{
		"users": users,
		"count": len(users),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.svc.DeleteUser(r.Context(), name); err != nil {
		s.respondError(w, err)
		return
	}
	respondOK(w, map[string]string{"deleted": name})
}

// parseUpload caps the request body and parses the multipart form.
// The returned cleanup releases the form's temp files.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, preprocess.MaxFileSize)
	if err := r.ParseMultipartForm(preprocess.MaxFileSize); err != nil {
		return func() {}, fmt.Errorf("invalid multipart upload: %w", err)
	}
	return func() { _ = r.MultipartForm.RemoveAll() }, nil
}

// singleUpload parses the form and spools the "audio" file to disk.
// cleanup removes both the multipart temp files and the spooled copy.
func (s *Server) singleUpload(w http.ResponseWriter, r *http.Request) (string, func(), error) {
	formCleanup, err := s.parseUpload(w, r)
	if err != nil {
		return "", formCleanup, err
	}

	files := r.MultipartForm.File["audio"]
	if len(files) != 1 {
		return "", formCleanup, fmt.Errorf("exactly one audio file is required, got %d", len(files))
	}

	paths, dir, err := s.saveUploads(files)
	cleanup := func() {
		if dir != "" {
			os.RemoveAll(dir)
		}
		formCleanup()
	}
	if err != nil {
		return "", cleanup, err
	}
	return paths[0], cleanup, nil
}

// saveUploads spools uploaded files into a fresh temp directory so the
// service can read them by path.
func (s *Server) saveUploads(files []*multipart.FileHeader) ([]string, string, error) {
	dir, err := os.MkdirTemp("", "voxauth-upload-*")
	if err != nil {
		return nil, "", err
	}
	paths := make([]string, 0, len(files))
	for i, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, dir, fmt.Errorf("upload %d: %w", i+1, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("sample-%02d.wav", i+1))
		dst, err := os.Create(path)
		if err != nil {
			src.Close()
			return nil, dir, err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, dir, fmt.Errorf("upload %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}
	return paths, dir, nil
}
