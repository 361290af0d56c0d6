package generate

import "github.com/whitehall-lang/ffibridge/domain/entities"

// SupportAsset returns the dialect's copy of the whffi frame codec the
// generated adapter stubs compile against. The pipeline writes one asset
// per dialect into the native output directory, next to the stubs.
func SupportAsset(dialect entities.Dialect) entities.SupportAsset {
	switch dialect {
	case entities.DialectRust:
		return entities.SupportAsset{Dialect: dialect, Name: "whffi.rs", Contents: whffiRs}
	default:
		return entities.SupportAsset{Dialect: entities.DialectCpp, Name: "whffi.hpp", Contents: whffiHpp}
	}
}

// whffiHpp is the C++ side of the frame codec. It must mirror the encoding
// in internal/abi/frame.go byte for byte: little-endian payloads, the call
// frame layout [version][argc][tag+payload...], and the error slot layout
// [version][status][code][arg][msglen][msg].
const whffiHpp = `// Code generated by ffibridge. DO NOT EDIT.
//
// whffi.hpp is the frame codec the generated *_bridge.cpp adapters compile
// against. Compile the adapters with this directory on the include path and
// link them into the same wasm module as the exported functions.
//
// Frames travel as packed pointer/length pairs (pointer in the high 32
// bits) in linear memory owned by the exported allocate/deallocate pair at
// the bottom of this header.
#ifndef WHFFI_HPP
#define WHFFI_HPP

#include <cstdint>
#include <cstdlib>
#include <cstring>
#include <string>
#include <vector>

namespace whffi {

constexpr uint8_t kFrameVersion = 1;

constexpr uint8_t kTagVoid = 0;
constexpr uint8_t kTagBool = 1;
constexpr uint8_t kTagI32 = 2;
constexpr uint8_t kTagI64 = 3;
constexpr uint8_t kTagU32 = 4;
constexpr uint8_t kTagU64 = 5;
constexpr uint8_t kTagF32 = 6;
constexpr uint8_t kTagF64 = 7;
constexpr uint8_t kTagText = 8;

constexpr uint8_t kStatusOk = 0;
constexpr uint8_t kStatusMarshalError = 1;
constexpr uint8_t kStatusFault = 2;

constexpr uint8_t kErrOutOfRange = 1;
constexpr uint8_t kErrInvalidEncoding = 2;
constexpr uint8_t kErrArityMismatch = 3;
constexpr uint8_t kErrFault = 4;

// kArgNone marks an error as frame-level rather than tied to one argument.
constexpr int8_t kArgNone = -1;

namespace detail {

inline uint64_t pack(const uint8_t* ptr, uint32_t len) {
    return (static_cast<uint64_t>(reinterpret_cast<uintptr_t>(ptr)) << 32) |
           static_cast<uint64_t>(len);
}

// emit copies the buffer into allocator-owned memory and packs it. The host
// hands the pointer back through the exported deallocate.
inline uint64_t emit(const std::vector<uint8_t>& buf) {
    uint8_t* out = static_cast<uint8_t*>(std::malloc(buf.size()));
    std::memcpy(out, buf.data(), buf.size());
    return pack(out, static_cast<uint32_t>(buf.size()));
}

inline void append_u32(std::vector<uint8_t>& buf, uint32_t v) {
    for (int i = 0; i < 4; i++) {
        buf.push_back(static_cast<uint8_t>(v >> (8 * i)));
    }
}

inline void append_u64(std::vector<uint8_t>& buf, uint64_t v) {
    for (int i = 0; i < 8; i++) {
        buf.push_back(static_cast<uint8_t>(v >> (8 * i)));
    }
}

inline uint32_t load_u32(const uint8_t* p) {
    uint32_t v = 0;
    for (int i = 0; i < 4; i++) {
        v |= static_cast<uint32_t>(p[i]) << (8 * i);
    }
    return v;
}

inline uint64_t load_u64(const uint8_t* p) {
    uint64_t v = 0;
    for (int i = 0; i < 8; i++) {
        v |= static_cast<uint64_t>(p[i]) << (8 * i);
    }
    return v;
}

// error_frame builds a result frame whose error slot names the failing
// argument (kArgNone for frame-level failures).
inline uint64_t error_frame(uint8_t status, uint8_t code, int8_t arg, const std::string& msg) {
    std::vector<uint8_t> buf;
    buf.reserve(8 + msg.size());
    buf.push_back(kFrameVersion);
    buf.push_back(status);
    buf.push_back(code);
    buf.push_back(static_cast<uint8_t>(arg));
    append_u32(buf, static_cast<uint32_t>(msg.size()));
    buf.insert(buf.end(), msg.begin(), msg.end());
    return emit(buf);
}

struct Slot {
    uint8_t tag = kTagVoid;
    uint64_t bits = 0;
    std::string text;
};

}  // namespace detail

// CallFrame holds the decoded arguments of one adapter invocation.
class CallFrame {
public:
    // decode unpacks the frame and checks the arity. Returns 0 on success,
    // otherwise a packed error result frame the adapter returns as-is.
    static uint64_t decode(uint64_t frame, size_t want, CallFrame& out);

    int32_t i32(size_t i) const { return static_cast<int32_t>(slots_[i].bits); }
    int64_t i64(size_t i) const { return static_cast<int64_t>(slots_[i].bits); }
    uint32_t u32(size_t i) const { return static_cast<uint32_t>(slots_[i].bits); }
    uint64_t u64(size_t i) const { return slots_[i].bits; }
    float f32(size_t i) const {
        uint32_t bits = static_cast<uint32_t>(slots_[i].bits);
        float v;
        std::memcpy(&v, &bits, sizeof v);
        return v;
    }
    double f64(size_t i) const {
        uint64_t bits = slots_[i].bits;
        double v;
        std::memcpy(&v, &bits, sizeof v);
        return v;
    }
    bool boolean(size_t i) const { return slots_[i].bits != 0; }
    const std::string& text(size_t i) const { return slots_[i].text; }

private:
    std::vector<detail::Slot> slots_;
};

inline uint64_t CallFrame::decode(uint64_t frame, size_t want, CallFrame& out) {
    const uint8_t* data = reinterpret_cast<const uint8_t*>(static_cast<uintptr_t>(frame >> 32));
    size_t len = static_cast<size_t>(frame & 0xffffffffu);
    if (data == nullptr || len < 3 || data[0] != kFrameVersion) {
        return detail::error_frame(kStatusFault, kErrFault, kArgNone, "malformed call frame");
    }
    size_t argc = static_cast<size_t>(data[1]) | (static_cast<size_t>(data[2]) << 8);
    if (argc != want) {
        return detail::error_frame(kStatusMarshalError, kErrArityMismatch, kArgNone,
                                   "argument count does not match the export arity");
    }
    out.slots_.clear();
    out.slots_.reserve(argc);
    size_t off = 3;
    for (size_t i = 0; i < argc; i++) {
        if (off >= len) {
            return detail::error_frame(kStatusFault, kErrFault, kArgNone, "truncated call frame");
        }
        detail::Slot slot;
        slot.tag = data[off++];
        switch (slot.tag) {
        case kTagBool:
            if (off + 1 > len) {
                return detail::error_frame(kStatusFault, kErrFault, kArgNone, "truncated call frame");
            }
            slot.bits = data[off];
            off += 1;
            break;
        case kTagI32:
        case kTagU32:
        case kTagF32:
            if (off + 4 > len) {
                return detail::error_frame(kStatusFault, kErrFault, kArgNone, "truncated call frame");
            }
            slot.bits = detail::load_u32(data + off);
            off += 4;
            break;
        case kTagI64:
        case kTagU64:
        case kTagF64:
            if (off + 8 > len) {
                return detail::error_frame(kStatusFault, kErrFault, kArgNone, "truncated call frame");
            }
            slot.bits = detail::load_u64(data + off);
            off += 8;
            break;
        case kTagText: {
            if (off + 4 > len) {
                return detail::error_frame(kStatusFault, kErrFault, kArgNone, "truncated call frame");
            }
            uint32_t n = detail::load_u32(data + off);
            off += 4;
            if (off + n > len) {
                return detail::error_frame(kStatusFault, kErrFault, kArgNone, "truncated call frame");
            }
            slot.text.assign(reinterpret_cast<const char*>(data + off), n);
            off += n;
            break;
        }
        default:
            return detail::error_frame(kStatusFault, kErrFault, kArgNone, "unknown value tag");
        }
        out.slots_.push_back(std::move(slot));
    }
    return 0;
}

// ResultFrame builds packed result frames for successful calls. Each
// constructor returns the packed pointer/length directly.
class ResultFrame {
public:
    static uint64_t make_void() {
        std::vector<uint8_t> buf{kFrameVersion, kStatusOk, kTagVoid};
        return detail::emit(buf);
    }
    static uint64_t boolean(bool v) {
        std::vector<uint8_t> buf{kFrameVersion, kStatusOk, kTagBool,
                                 static_cast<uint8_t>(v ? 1 : 0)};
        return detail::emit(buf);
    }
    static uint64_t i32(int32_t v) { return scalar32(kTagI32, static_cast<uint32_t>(v)); }
    static uint64_t u32(uint32_t v) { return scalar32(kTagU32, v); }
    static uint64_t i64(int64_t v) { return scalar64(kTagI64, static_cast<uint64_t>(v)); }
    static uint64_t u64(uint64_t v) { return scalar64(kTagU64, v); }
    static uint64_t f32(float v) {
        uint32_t bits;
        std::memcpy(&bits, &v, sizeof bits);
        return scalar32(kTagF32, bits);
    }
    static uint64_t f64(double v) {
        uint64_t bits;
        std::memcpy(&bits, &v, sizeof bits);
        return scalar64(kTagF64, bits);
    }
    static uint64_t text(const std::string& v) {
        std::vector<uint8_t> buf;
        buf.reserve(7 + v.size());
        buf.push_back(kFrameVersion);
        buf.push_back(kStatusOk);
        buf.push_back(kTagText);
        detail::append_u32(buf, static_cast<uint32_t>(v.size()));
        buf.insert(buf.end(), v.begin(), v.end());
        return detail::emit(buf);
    }

private:
    static uint64_t scalar32(uint8_t tag, uint32_t bits) {
        std::vector<uint8_t> buf{kFrameVersion, kStatusOk, tag};
        detail::append_u32(buf, bits);
        return detail::emit(buf);
    }
    static uint64_t scalar64(uint8_t tag, uint64_t bits) {
        std::vector<uint8_t> buf{kFrameVersion, kStatusOk, tag};
        detail::append_u64(buf, bits);
        return detail::emit(buf);
    }
};

}  // namespace whffi

// The host writes call frames into memory obtained from allocate and frees
// both frames through deallocate. Weak linkage keeps the pair from
// colliding when several bridge translation units include this header.
extern "C" {

__attribute__((weak, export_name("allocate")))
uint8_t* whffi_allocate(uint32_t size) {
    return static_cast<uint8_t*>(std::malloc(size));
}

__attribute__((weak, export_name("deallocate")))
void whffi_deallocate(uint8_t* ptr, uint32_t size) {
    (void)size;
    std::free(ptr);
}

}  // extern "C"

#endif  // WHFFI_HPP
`

// whffiRs is the Rust side of the frame codec. Declare it with "mod whffi;"
// at the crate root; the generated *_bridge.rs adapters resolve it from
// there.
const whffiRs = `// Code generated by ffibridge. DO NOT EDIT.
//
// whffi is the frame codec the generated *_bridge.rs adapters compile
// against. Declare this file with a top-level "mod whffi;" and include the
// adapters at the crate root next to the exported functions.
//
// Frames travel as packed pointer/length pairs (pointer in the high 32
// bits) in linear memory owned by the exported allocate/deallocate pair at
// the bottom of this module.

pub const FRAME_VERSION: u8 = 1;

pub const TAG_VOID: u8 = 0;
pub const TAG_BOOL: u8 = 1;
pub const TAG_I32: u8 = 2;
pub const TAG_I64: u8 = 3;
pub const TAG_U32: u8 = 4;
pub const TAG_U64: u8 = 5;
pub const TAG_F32: u8 = 6;
pub const TAG_F64: u8 = 7;
pub const TAG_TEXT: u8 = 8;

pub const STATUS_OK: u8 = 0;
pub const STATUS_MARSHAL_ERROR: u8 = 1;
pub const STATUS_FAULT: u8 = 2;

pub const ERR_OUT_OF_RANGE: u8 = 1;
pub const ERR_INVALID_ENCODING: u8 = 2;
pub const ERR_ARITY_MISMATCH: u8 = 3;
pub const ERR_FAULT: u8 = 4;

/// Marks an error as frame-level rather than tied to one argument.
pub const ARG_NONE: i8 = -1;

/// A decode failure reported back to the host through the result frame's
/// error slot.
pub struct FrameError {
    pub status: u8,
    pub code: u8,
    pub arg: i8,
    pub message: String,
}

impl FrameError {
    fn fault(message: &str) -> FrameError {
        FrameError {
            status: STATUS_FAULT,
            code: ERR_FAULT,
            arg: ARG_NONE,
            message: message.to_string(),
        }
    }
}

enum Slot {
    Bits(u64),
    Text(String),
}

impl Slot {
    fn bits(&self) -> u64 {
        match self {
            Slot::Bits(b) => *b,
            Slot::Text(_) => 0,
        }
    }
}

/// The decoded arguments of one adapter invocation.
pub struct CallFrame {
    slots: Vec<Slot>,
}

impl CallFrame {
    /// Unpacks the frame and checks the arity against the export's
    /// signature. On failure the adapter encodes the error into a result
    /// frame and returns it as-is.
    pub fn decode(frame: u64, want: usize) -> Result<CallFrame, FrameError> {
        let ptr = (frame >> 32) as usize as *const u8;
        let len = (frame & 0xffff_ffff) as usize;
        if ptr.is_null() || len < 3 {
            return Err(FrameError::fault("malformed call frame"));
        }
        let data = unsafe { std::slice::from_raw_parts(ptr, len) };
        if data[0] != FRAME_VERSION {
            return Err(FrameError::fault("malformed call frame"));
        }
        let argc = data[1] as usize | ((data[2] as usize) << 8);
        if argc != want {
            return Err(FrameError {
                status: STATUS_MARSHAL_ERROR,
                code: ERR_ARITY_MISMATCH,
                arg: ARG_NONE,
                message: "argument count does not match the export arity".to_string(),
            });
        }
        let mut slots = Vec::with_capacity(argc);
        let mut off = 3;
        for i in 0..argc {
            if off >= len {
                return Err(FrameError::fault("truncated call frame"));
            }
            let tag = data[off];
            off += 1;
            let slot = match tag {
                TAG_BOOL => {
                    let b = *data.get(off).ok_or_else(|| FrameError::fault("truncated call frame"))?;
                    off += 1;
                    Slot::Bits(b as u64)
                }
                TAG_I32 | TAG_U32 | TAG_F32 => {
                    let bytes = data
                        .get(off..off + 4)
                        .ok_or_else(|| FrameError::fault("truncated call frame"))?;
                    off += 4;
                    Slot::Bits(u32::from_le_bytes(bytes.try_into().unwrap()) as u64)
                }
                TAG_I64 | TAG_U64 | TAG_F64 => {
                    let bytes = data
                        .get(off..off + 8)
                        .ok_or_else(|| FrameError::fault("truncated call frame"))?;
                    off += 8;
                    Slot::Bits(u64::from_le_bytes(bytes.try_into().unwrap()))
                }
                TAG_TEXT => {
                    let bytes = data
                        .get(off..off + 4)
                        .ok_or_else(|| FrameError::fault("truncated call frame"))?;
                    let n = u32::from_le_bytes(bytes.try_into().unwrap()) as usize;
                    off += 4;
                    let raw = data
                        .get(off..off + n)
                        .ok_or_else(|| FrameError::fault("truncated call frame"))?;
                    off += n;
                    let text = String::from_utf8(raw.to_vec()).map_err(|_| FrameError {
                        status: STATUS_MARSHAL_ERROR,
                        code: ERR_INVALID_ENCODING,
                        arg: i as i8,
                        message: "argument is not valid UTF-8".to_string(),
                    })?;
                    Slot::Text(text)
                }
                _ => return Err(FrameError::fault("unknown value tag")),
            };
            slots.push(slot);
        }
        Ok(CallFrame { slots })
    }

    pub fn i32(&self, i: usize) -> i32 {
        self.slots[i].bits() as u32 as i32
    }

    pub fn i64(&self, i: usize) -> i64 {
        self.slots[i].bits() as i64
    }

    pub fn u32(&self, i: usize) -> u32 {
        self.slots[i].bits() as u32
    }

    pub fn u64(&self, i: usize) -> u64 {
        self.slots[i].bits()
    }

    pub fn f32(&self, i: usize) -> f32 {
        f32::from_bits(self.slots[i].bits() as u32)
    }

    pub fn f64(&self, i: usize) -> f64 {
        f64::from_bits(self.slots[i].bits())
    }

    pub fn boolean(&self, i: usize) -> bool {
        self.slots[i].bits() != 0
    }

    pub fn text(&self, i: usize) -> String {
        match &self.slots[i] {
            Slot::Text(s) => s.clone(),
            Slot::Bits(_) => String::new(),
        }
    }
}

/// A result frame under construction. encode hands the buffer to the host,
/// which frees it through the exported deallocate.
pub struct ResultFrame(Vec<u8>);

impl ResultFrame {
    pub fn void() -> ResultFrame {
        ResultFrame(vec![FRAME_VERSION, STATUS_OK, TAG_VOID])
    }

    pub fn boolean(v: bool) -> ResultFrame {
        ResultFrame(vec![FRAME_VERSION, STATUS_OK, TAG_BOOL, v as u8])
    }

    pub fn i32(v: i32) -> ResultFrame {
        Self::scalar(TAG_I32, &(v as u32).to_le_bytes())
    }

    pub fn u32(v: u32) -> ResultFrame {
        Self::scalar(TAG_U32, &v.to_le_bytes())
    }

    pub fn i64(v: i64) -> ResultFrame {
        Self::scalar(TAG_I64, &(v as u64).to_le_bytes())
    }

    pub fn u64(v: u64) -> ResultFrame {
        Self::scalar(TAG_U64, &v.to_le_bytes())
    }

    pub fn f32(v: f32) -> ResultFrame {
        Self::scalar(TAG_F32, &v.to_bits().to_le_bytes())
    }

    pub fn f64(v: f64) -> ResultFrame {
        Self::scalar(TAG_F64, &v.to_bits().to_le_bytes())
    }

    pub fn text(v: String) -> ResultFrame {
        let mut buf = Vec::with_capacity(7 + v.len());
        buf.extend_from_slice(&[FRAME_VERSION, STATUS_OK, TAG_TEXT]);
        buf.extend_from_slice(&(v.len() as u32).to_le_bytes());
        buf.extend_from_slice(v.as_bytes());
        ResultFrame(buf)
    }

    pub fn from_err(err: FrameError) -> ResultFrame {
        let mut buf = Vec::with_capacity(8 + err.message.len());
        buf.extend_from_slice(&[FRAME_VERSION, err.status, err.code, err.arg as u8]);
        buf.extend_from_slice(&(err.message.len() as u32).to_le_bytes());
        buf.extend_from_slice(err.message.as_bytes());
        ResultFrame(buf)
    }

    fn scalar(tag: u8, payload: &[u8]) -> ResultFrame {
        let mut buf = Vec::with_capacity(3 + payload.len());
        buf.extend_from_slice(&[FRAME_VERSION, STATUS_OK, tag]);
        buf.extend_from_slice(payload);
        ResultFrame(buf)
    }

    pub fn encode(self) -> u64 {
        let boxed = self.0.into_boxed_slice();
        let len = boxed.len() as u64;
        let ptr = Box::into_raw(boxed) as *mut u8 as usize as u64;
        (ptr << 32) | len
    }
}

/// The host writes call frames into memory obtained here and frees both
/// frames through deallocate.
#[no_mangle]
pub extern "C" fn allocate(size: u32) -> *mut u8 {
    let mut buf = Vec::<u8>::with_capacity(size as usize);
    let ptr = buf.as_mut_ptr();
    std::mem::forget(buf);
    ptr
}

/// # Safety
/// ptr must come from allocate or a ResultFrame handed to the host, with
/// the matching size.
#[no_mangle]
pub unsafe extern "C" fn deallocate(ptr: *mut u8, size: u32) {
    if ptr.is_null() {
        return;
    }
    drop(Vec::from_raw_parts(ptr, 0, size as usize));
}
`
